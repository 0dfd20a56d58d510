package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"question-index/internal/mb"
)

// listSections are the values accepted by --section.
var listSections = []string{"all", "fav", "recent", "mine", "popular", "archived"}

func newListCmd(o *options) *cobra.Command {
	var (
		section    string
		collection string
		stats      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print collections and the questions of one section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(listSections, section) {
				return fmt.Errorf("unknown section %q (want one of %v)", section, listSections)
			}
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			closer, err := setupLogging(o, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			if cfg.Session == "" {
				return errNoSession
			}
			client := newClient(cfg, o)

			var (
				cols  []mb.Collection
				cards []mb.Card
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				cols, err = client.ListCollections(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				cards, err = client.ListCards(ctx, mb.CardQuery{Section: section, Collection: collection})
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCollections(out, cols)
			printCards(out, cards)
			if stats {
				if m := client.Metrics(); m != nil {
					printStats(out, m.Snapshot())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&section, "section", "f", "all", "section filter")
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection slug (empty lists uncollected questions)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print request counters")
	return cmd
}

func printCollections(w io.Writer, cols []mb.Collection) {
	bold := color.New(color.Bold)
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "No collections.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("Collection"), bold.Sprint("Slug"))
	for _, c := range cols {
		tbl.AddRow(c.Name, c.Slug)
	}
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w, "")
}

func printCards(w io.Writer, cards []mb.Card) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	star := color.New(color.FgHiYellow)
	if len(cards) == 0 {
		_, _ = fmt.Fprintln(w, "No questions.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Question"), bold.Sprint("Display"), "")
	for _, c := range cards {
		fav := ""
		if c.Favorite {
			fav = star.Sprint("★")
		}
		tbl.AddRow(strconv.Itoa(c.ID), c.Name, faint.Sprint(c.Display), fav)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printStats(w io.Writer, s mb.MetricsSnapshot) {
	_, _ = fmt.Fprintf(w, "\nrequests=%d retries=%d backoff=%s 2xx=%d 4xx=%d 429=%d 5xx=%d\n",
		s.TotalRequests, s.TotalRetries, s.TotalBackoff, s.Status2xx, s.Status4xx, s.Status429, s.Status5xx)
}
