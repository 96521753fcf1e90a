package command

import (
	"github.com/spf13/cobra"

	"github.com/aggiereview/aggiereview/internal/importer"
)

var (
	coursesFile     string
	coursesStrategy string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Import course listings keyed by department name",
	Long: `Import a JSON object of {department name: ["Title - CODE 123", ...]}.

--strategy strict   accepts "Title - CODE" or a bare "CODE", dedups by code and
                    department, and skips codes already stored.
--strategy permissive takes the first code on the line, dedups by code alone and
                    upserts whole batches without overwriting stored codes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := importer.ParseStrategy(coursesStrategy)
		if err != nil {
			return err
		}
		catalog, err := importer.LoadCatalogFile(coursesFile)
		if err != nil {
			return err
		}
		for _, label := range catalog.Ignored {
			current.logger.Warn().Str("department", label).Msg("Entry is not a list, ignoring")
		}

		imp := importer.NewCourseImporter(current.repos.DepartmentRepository, current.repos.CourseRepository,
			strategy, current.cfg.Importer.BatchSize, current.logger)
		report, err := imp.Import(cmd.Context(), catalog)
		if err != nil {
			return err
		}
		return printReport(cmd, "Course import", report)
	},
}

func init() {
	coursesCmd.Flags().StringVar(&coursesFile, "file", "data/courses.json", "course listings JSON file")
	coursesCmd.Flags().StringVar(&coursesStrategy, "strategy", "strict", "parsing strategy: strict or permissive")
	rootCmd.AddCommand(coursesCmd)
}
