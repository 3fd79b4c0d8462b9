package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/pipeline"
	"github.com/fedwatch/fedwatch/internal/source"
)

var epaLimit int

var epaCmd = &cobra.Command{
	Use:   "epa",
	Short: "Process EPA civil enforcement cases",
	Long: `Scrapes the EPA civil enforcement listing, skips cases already in
the content store, and extracts a summary, penalty, cited federal laws,
and environmental issues from each new case.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, cleanup, err := setupRun(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		issues, err := env.environmentalIssues(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch environmental issues taxonomy: %w", err)
		}
		ex := env.extractor(issues)

		adapter := source.NewEPAAdapter(source.EPAConfig{Logger: env.logger})
		records, stats, err := pipeline.Run(ctx, pipeline.Params{
			Adapter: adapter,
			Options: source.FetchOptions{Limit: env.recordLimit(epaLimit)},
			Exists:  env.store.TitleExists,
			Process: pipeline.EnforcementProcessor(ex, issues, env.rec),
			Logger:  env.logger,
		})
		if err != nil {
			return err
		}

		out := env.outputPath(env.cfg.Output.EnforcementFile)
		if err := emit.WriteFile(out, records); err != nil {
			return err
		}
		env.logger.Info("wrote enforcement records", "path", out, "accepted", stats.Accepted, "skipped", stats.Skipped, "failed", stats.Failed)
		return nil
	},
}

func init() {
	epaCmd.Flags().IntVar(&epaLimit, "limit", 0, "max cases to process (0 = all listed)")
}
