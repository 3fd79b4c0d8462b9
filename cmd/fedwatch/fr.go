package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/pipeline"
	"github.com/fedwatch/fedwatch/internal/source"
	"github.com/fedwatch/fedwatch/internal/vocab"
)

var (
	frAgency string
	frSince  string
	frLimit  int
	frNews   bool
)

var frCmd = &cobra.Command{
	Use:   "fr",
	Short: "Process Federal Register rules for an agency",
	Long: `Lists rule and proposed-rule documents from the Federal Register API
for one agency, skips documents already in the content store, and
writes three audience summaries (high school, lobbyist, activist) for
each new document.

With --news, the run's summaries are additionally rolled into a single
news-digest record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		agency, err := resolveAgency(frAgency)
		if err != nil {
			return err
		}

		env, cleanup, err := setupRun(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		// FR summary fields declare no vocabulary; the default is only
		// there so the normalizer registry is fully populated.
		ex := env.extractor(vocab.Default())

		adapter := source.NewFRAdapter(source.FRConfig{Agency: agency, Logger: env.logger})
		records, stats, err := pipeline.Run(ctx, pipeline.Params{
			Adapter: adapter,
			Options: source.FetchOptions{Limit: env.recordLimit(frLimit), Since: frSince},
			Exists:  env.store.TitleExists,
			Process: pipeline.SummaryProcessor(ex, agency, env.rec),
			Logger:  env.logger,
		})
		if err != nil {
			return err
		}

		out := env.outputPath(env.cfg.Output.RulesFile)
		if err := emit.WriteFile(out, records); err != nil {
			return err
		}
		env.logger.Info("wrote rule records", "path", out, "accepted", stats.Accepted, "skipped", stats.Skipped, "failed", stats.Failed)

		if !frNews {
			return nil
		}
		if len(records) == 0 {
			env.logger.Warn("no new records, skipping news digest")
			return nil
		}

		env.rec.SetDocument("news digest")
		digest, truncated, err := pipeline.Digest(ctx, ex, agency, records, env.logger)
		if err != nil {
			return fmt.Errorf("failed to build news digest: %w", err)
		}
		if truncated {
			env.logger.Warn("news digest input was truncated, digest covers a prefix of the run")
		}

		digestOut := env.outputPath(env.cfg.Output.DigestFile)
		if err := emit.WriteDigestFile(digestOut, digest); err != nil {
			return err
		}
		env.logger.Info("wrote news digest", "path", digestOut, "title", digest.Title)
		return nil
	},
}

// resolveAgency looks the --agency flag up in the built-in agency
// table.
func resolveAgency(name string) (source.Agency, error) {
	return source.LookupAgency(source.DefaultAgencies(), name)
}

func init() {
	frCmd.Flags().StringVar(&frAgency, "agency", "epa", "agency short or full name (e.g. epa, noaa, nhtsa)")
	frCmd.Flags().StringVar(&frSince, "date", "", "publication date lower bound (YYYY-MM-DD)")
	frCmd.Flags().IntVar(&frLimit, "limit", 0, "max documents to process (0 = all listed)")
	frCmd.Flags().BoolVar(&frNews, "news", false, "also write a news digest of the run's summaries")
}
