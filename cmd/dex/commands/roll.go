package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finitefield.org/dex-web/internal/content"
	"finitefield.org/dex-web/internal/dex"
	dextpl "finitefield.org/dex-web/internal/templates/dex"
	"finitefield.org/dex-web/internal/termview"
)

func rollCmd() *cobra.Command {
	var (
		concurrency int
		category    string
		expand      bool
		columns     int
	)

	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Fetch one random batch and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			category = strings.ToLower(strings.TrimSpace(category))
			if category != "" && !dex.IsKnownCategory(category) {
				return fmt.Errorf("unknown category %q", category)
			}

			fetcher, err := buildFetcher(cfg, logger, concurrency)
			if err != nil {
				return err
			}

			page := content.Widget()
			out := cmd.OutOrStdout()

			creatures, err := fetcher.Load(cmd.Context())
			if err != nil {
				fmt.Fprint(out, termview.Error(page.Labels, err.Error()))
				return err
			}

			visible := dex.Filter(creatures, category)
			cards := make([]dextpl.CardData, 0, len(visible))
			for _, c := range visible {
				cards = append(cards, dextpl.BuildCard("cli", c, expand, page.Labels))
			}
			fmt.Fprint(out, termview.Render(cards, page.Labels, termview.Options{
				Heading: page.Title,
				Columns: columns,
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel fetches (overrides DEX_FETCH_CONCURRENCY)")
	cmd.Flags().StringVar(&category, "type", "", "only show creatures of this type, e.g. fire")
	cmd.Flags().BoolVar(&expand, "expand", false, "show height, weight, abilities and base experience")
	cmd.Flags().IntVar(&columns, "columns", 3, "cards per row")
	return cmd
}
