package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aggiereview/aggiereview/internal/seed"
)

var departmentsFile string

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "Insert the departments listed in the seed file",
	Long:  `Insert every department of the seed file whose name is not stored yet. Existing departments are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := departmentsFile
		if path == "" {
			path = current.cfg.Importer.DepartmentsFile
		}

		inserted, err := seed.CreateDefaultData(cmd.Context(), current.repos.DepartmentRepository, path, current.logger)
		if err != nil {
			return fmt.Errorf("failed to seed departments: %w", err)
		}

		total, err := current.repos.DepartmentRepository.GetAll(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, "Departments", map[string]int{
			"inserted": inserted,
			"total":    len(total),
		})
	},
}

func init() {
	departmentsCmd.Flags().StringVar(&departmentsFile, "file", "", "departments YAML file (default from config)")
	rootCmd.AddCommand(departmentsCmd)
}
