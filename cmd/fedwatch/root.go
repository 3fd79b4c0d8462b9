package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fedwatch/fedwatch/version"
)

var (
	cfgFile  string
	logLevel string
	backend  string
)

var rootCmd = &cobra.Command{
	Use:   "fedwatch",
	Short: "Regulatory document pipeline with LLM-powered summarization and extraction",
	Long: `Fedwatch ingests federal regulatory documents and turns them into
structured, reader-facing records.

Sources:
  - Federal Register rules and proposed rules, per agency
  - EPA civil enforcement cases and settlements

Each document is summarized and mined for entities (penalties, cited
federal laws, environmental issues) by an LLM under a declared schema,
validated, and emitted as JSON. Documents already present in the
content store are skipped.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.fedwatch/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&backend, "backend", "", "LLM backend to use (default: from config)",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments set the environment directly.
		_ = godotenv.Load()
		setupLogging(logLevel)
	}

	rootCmd.AddCommand(epaCmd)
	rootCmd.AddCommand(frCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
