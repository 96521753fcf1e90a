package command

// root.go sets up the global flags and opens the record store every
// subcommand writes to.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/bootstrap"
	"github.com/aggiereview/aggiereview/internal/config"
	"github.com/aggiereview/aggiereview/internal/db"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/pgstore"
	"github.com/aggiereview/aggiereview/internal/seed"
)

var (
	cfgFile string // config file path
	dryRun  bool   // write to an in-memory store instead of PostgreSQL
)

// env is the state shared by subcommands once the root has run
type env struct {
	cfg      *config.Config
	logger   zerolog.Logger
	repos    *repositories.Repositories
	database *db.PostgresDB
}

var current *env

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "importer - loads catalog extracts into Aggie Review",
	Long: `importer loads the static catalog extracts into the Aggie Review database:
- departments from the seed file
- courses and professor rosters keyed by department name
- the professor to department junction
and reports professors that share a name.

With --dry-run everything runs against an in-memory store seeded with the
departments file, so a run can be checked without touching the database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		current = e
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil && current.database != nil {
			current.database.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", bootstrap.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "run against an in-memory store")
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(cfgFile)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: lgr}

	if dryRun {
		lgr.Info().Msg("Dry run: using an in-memory store")
		e.repos = repositories.NewRepositories(repositories.NewMemoryStore())
		if _, err := seed.CreateDefaultData(ctx, e.repos.DepartmentRepository, cfg.Importer.DepartmentsFile, lgr); err != nil {
			return nil, fmt.Errorf("failed to seed in-memory departments: %w", err)
		}
		return e, nil
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	e.database = database
	e.repos = repositories.NewRepositories(pgstore.New(database.Pool, lgr))
	return e, nil
}

// printReport writes a report as indented JSON to the command's output
func printReport(cmd *cobra.Command, title string, report any) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s\n", title, raw)
	return nil
}
