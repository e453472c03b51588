package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/darknet/cli/internal/probe"
	"github.com/gravitrone/darknet/cli/internal/registry"
	"github.com/gravitrone/darknet/cli/internal/schedule"
	"github.com/gravitrone/darknet/cli/internal/site"
)

// ProbeCmd returns the `darknet probe` command.
func ProbeCmd(g *Globals) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "probe [page]",
		Short: "Check the external links of a page once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.Load()
			if err != nil {
				return err
			}
			client, err := NewSiteClient(cfg)
			if err != nil {
				return err
			}

			location := cfg.StartPage
			if len(args) == 1 {
				location = args[0]
			}
			page, err := client.Load(cmd.Context(), location)
			if err != nil {
				return fmt.Errorf("load %s: %w", site.Normalize(location), err)
			}
			if len(page.Probes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no external links on this page")
				return nil
			}

			if concurrency <= 0 {
				concurrency = cfg.ProbeConcurrency
			}
			poller := probe.NewPoller(NewProber(cfg), schedule.New(nil), probe.PollerOptions{
				Concurrency: concurrency,
			}, nil)
			poller.SetTargets(page.Probes)

			cycle := poller.RunCycle(cmd.Context())
			printCycle(cmd, page, cycle)
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "probes in flight at once (default from config)")
	return cmd
}

func printCycle(cmd *cobra.Command, page *registry.Page, cycle probe.Cycle) {
	out := cmd.OutOrStdout()
	for _, r := range cycle.Results {
		name := r.Target
		if r.Item >= 0 && r.Item < len(page.Items) && page.Items[r.Item].Title != "" {
			name = page.Items[r.Item].Title
		}
		detail := ""
		switch {
		case r.Code != 0:
			detail = fmt.Sprintf("HTTP %d", r.Code)
		case r.Err != nil:
			detail = "unreachable"
		}
		fmt.Fprintf(out, "  %-11s %-24s %s  %s\n", r.Status.Label(), name, r.Target, detail)
	}
	fmt.Fprintf(out, "%d/%d online (%s)\n",
		cycle.Online(), len(cycle.Results), cycle.Finished.Sub(cycle.Started).Round(time.Millisecond))
}
