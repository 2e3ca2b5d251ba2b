package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/sanitize"
)

const defaultAction = "summarizeWebsite"

var analyzeAction string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Crawl a site and print a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cfg)
		if err != nil {
			return err
		}
		if !env.Analyzer.Has(analyzeAction) {
			return apperr.UnknownAction()
		}

		result, err := crawlSite(cmd, env, args[0])
		if err != nil {
			return err
		}
		cleaned := sanitize.Clean(result.Markdown())
		zap.L().Info("crawl complete",
			zap.String("url", args[0]),
			zap.Int("pages", len(result.Data)),
			zap.Int("chars", len(cleaned)),
		)

		res, err := env.Analyzer.Run(cmd.Context(), analyzeAction, cleaned)
		if err != nil {
			return err
		}
		report, err := res.Markdown()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), report)
		return err
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeAction, "action", defaultAction, "analysis action to run")
	rootCmd.AddCommand(analyzeCmd)
}
