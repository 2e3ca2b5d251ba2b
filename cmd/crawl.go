package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/site-analyzer/internal/crawl"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/sanitize"
)

var crawlRaw bool

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site and print its cleaned text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cfg)
		if err != nil {
			return err
		}

		result, err := crawlSite(cmd, env, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if crawlRaw {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(result), "encode crawl result")
		}
		_, err = fmt.Fprintln(out, sanitize.Clean(result.Markdown()))
		return err
	},
}

func crawlSite(cmd *cobra.Command, env *appEnv, rawURL string) (*model.CrawlResult, error) {
	target, err := crawl.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	return env.Crawler.Crawl(cmd.Context(), target, crawl.Options{Limit: cfg.Crawl.PageLimit})
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlRaw, "raw", false, "print the provider crawl result as JSON")
	rootCmd.AddCommand(crawlCmd)
}
