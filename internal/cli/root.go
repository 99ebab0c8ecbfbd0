package cli

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"mathdrills/internal/config"
	"mathdrills/internal/infra/sqlite"
	"mathdrills/internal/logging"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

type globalFlags struct {
	configPath string
	dbPath     string
	verbose    bool
	logFormat  string
}

// env is what every subcommand needs: merged config, a logger and the database.
type env struct {
	cfg config.Config
	log *logrus.Logger
	db  *bun.DB
}

func (e *env) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "mathdrills",
		Short:         "Arithmetic drill quizzes with local score tracking",
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", config.PathFromEnv(), "path to YAML config")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to the SQLite score database")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output, including SQL")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(newPlayCmd(flags))
	cmd.AddCommand(newQuizzesCmd(flags))
	cmd.AddCommand(newScoresCmd(flags))
	cmd.AddCommand(newUsersCmd(flags))
	cmd.AddCommand(newMigrateCmd(flags))
	return cmd
}

// loadConfig merges the config file, environment and flags, in that order.
func (f *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.dbPath != "" {
		cfg.Database.Path = f.dbPath
	}
	if f.verbose {
		cfg.Log.Verbose = true
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, nil
}

func (f *globalFlags) setup(ctx context.Context, logOut io.Writer) (*env, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{Verbose: cfg.Log.Verbose, Format: cfg.Log.Format, Output: logOut})

	db, err := sqlite.Open(ctx, cfg.Database.Path, sqlite.Options{Logger: log, LogQueries: cfg.Log.Verbose})
	if err != nil {
		return nil, err
	}
	log.WithField("db", cfg.Database.Path).Debug("database ready")
	return &env{cfg: cfg, log: log, db: db}, nil
}

func cacheTTL(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
}
