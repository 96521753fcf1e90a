package command

import (
	"github.com/spf13/cobra"

	"github.com/aggiereview/aggiereview/internal/importer"
)

var professorsFile string

var professorsCmd = &cobra.Command{
	Use:   "professors",
	Short: "Import professor rosters keyed by department name",
	Long:  `Import a JSON object of {department name: ["Dr. Name", ...]}. Department names must match exactly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := importer.LoadCatalogFile(professorsFile)
		if err != nil {
			return err
		}

		imp := importer.NewProfessorImporter(current.repos.DepartmentRepository, current.repos.ProfessorRepository,
			current.cfg.Importer.BatchSize, current.logger)
		report, err := imp.Import(cmd.Context(), roster)
		if err != nil {
			return err
		}
		return printReport(cmd, "Professor import", report)
	},
}

var professorDepartmentsCmd = &cobra.Command{
	Use:   "professor-departments",
	Short: "Link every professor to its primary department",
	RunE: func(cmd *cobra.Command, args []string) error {
		populator := importer.NewProfessorDepartmentPopulator(current.repos.ProfessorRepository,
			current.repos.ProfessorDepartmentRepository, current.cfg.Importer.BatchSize, current.logger)
		report, err := populator.Populate(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, "Professor departments", report)
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Report professors that share a name",
	Long:  `List groups of professors with the same exact name, the departments they appear under, and which record would be kept. Nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		detector := importer.NewDuplicateDetector(current.repos.ProfessorRepository,
			current.repos.DepartmentRepository, current.logger)
		report, err := detector.Detect(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, "Duplicate professors", report)
	},
}

func init() {
	professorsCmd.Flags().StringVar(&professorsFile, "file", "data/professors.json", "professor roster JSON file")
	rootCmd.AddCommand(professorsCmd, professorDepartmentsCmd, duplicatesCmd)
}
