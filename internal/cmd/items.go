package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/darknet/cli/internal/site"
)

// ItemsCmd returns the `darknet items` command.
func ItemsCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "items [page]",
		Short: "List the selectable entries of a page in order",
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

			out := cmd.OutOrStdout()
			if len(page.Items) == 0 {
				fmt.Fprintln(out, "no entries found")
			}
			for i, item := range page.Items {
				target := item.Target
				if target == "" {
					target = "-"
				}
				fmt.Fprintf(out, "%3d  %-7s %-28s %s\n", i, strings.ToUpper(item.Role.String()), item.Title, target)
			}
			for _, link := range page.Links {
				fmt.Fprintf(out, "  ↗  %-36s %s\n", link.Text, link.Href)
			}
			return nil
		},
	}
}
