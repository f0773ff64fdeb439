// Command headwater exercises connection resolution from the shell:
// inspect what the chain would pick, ping the resolved database, or run
// a SQL file against it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headwaterdb/headwater"
	"github.com/headwaterdb/headwater/internal/logger"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	// Flags
	verbose     bool
	debug       bool
	envFile     string
	envFileSet  bool
	configFiles []string
	sqliteFile  string
	secretSheet string
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "headwater",
		Short: "Resolve a database connection for the current environment",
		Long: `headwater inspects the runtime environment in priority order (Spark
session, notebook secret sheet, dotenv file, disposable test database)
and resolves a ready-to-use database connection, falling back to a local
SQLite file so there is always something to run against.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logger.LevelInfo
			if debug {
				level = logger.LevelDebug
			}
			logger.Init(level, cfg.LogFile)
			envFileSet = cmd.Root().PersistentFlags().Lookup("env-file").Changed
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", cfg.Verbose, "print which connection source was chosen")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", cfg.Debug, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", cfg.EnvFile, "dotenv file consulted during auto-detection")
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config-file", nil, "dotenv file(s) to load explicitly, in order (later files win)")
	rootCmd.PersistentFlags().StringVar(&sqliteFile, "sqlite", "", "force a SQLite database at this path")
	rootCmd.PersistentFlags().StringVar(&secretSheet, "secret-sheet", cfg.SecretSheet, "notebook secret sheet name")

	rootCmd.AddCommand(
		newResolveCmd(),
		newPingCmd(),
		newRunCmd(),
	)

	err = rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolverOptions assembles library options from the CLI flags. The env
// file path is only forwarded when the user changed it, so the library
// keeps treating the default .env as an implicit source.
func resolverOptions() []headwater.Option {
	opts := []headwater.Option{
		headwater.WithVerbose(verbose),
		headwater.WithSecretSheet(secretSheet),
	}
	if envFileSet {
		opts = append(opts, headwater.WithEnvFile(envFile))
	}
	if len(configFiles) > 0 {
		opts = append(opts, headwater.WithConfigFiles(configFiles))
	}
	if sqliteFile != "" {
		opts = append(opts, headwater.WithSQLiteFile(sqliteFile))
	}
	return opts
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
