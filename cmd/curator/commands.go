package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/curator/internal/app"
	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
	"github.com/five82/curator/internal/slug"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "curator",
		Short:         "Browse and edit the course catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "override config path (optional)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "override prefs path (optional)")
	flags.BoolVar(&opts.Debug, "debug", false, "log at debug level")

	root.AddCommand(newListCmd(&opts), newSlugCmd())
	return root
}

type listFlags struct {
	search   string
	category string
	status   string
	sort     string
	desc     bool
	page     int
	pageSize int
	minPrice float64
	maxPrice float64
}

func newListCmd(opts *app.Options) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Setup(*opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Manager.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("load courses: %w", err)
			}

			m := svc.Manager
			m.SetFilter(lf.patch(cmd))
			if cmd.Flags().Changed("sort") || cmd.Flags().Changed("desc") {
				dir := collection.Asc
				if lf.desc {
					dir = collection.Desc
				}
				m.SetSort(lf.sort, dir)
			}
			if lf.pageSize > 0 {
				m.SetPageSize(lf.pageSize)
			}
			m.SetPage(lf.page)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderPage(m.VisiblePage()))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&lf.search, "search", "", "text search across the configured fields")
	f.StringVar(&lf.category, "category", "", "only this category")
	f.StringVar(&lf.status, "status", "", "only this status (draft, published, archived)")
	f.StringVar(&lf.sort, "sort", "", "sort key: "+strings.Join(catalog.SortKeys[1:], ", "))
	f.BoolVar(&lf.desc, "desc", false, "sort descending")
	f.IntVar(&lf.page, "page", 1, "page number")
	f.IntVar(&lf.pageSize, "page-size", 0, "courses per page (default from config)")
	f.Float64Var(&lf.minPrice, "min-price", 0, "lowest price")
	f.Float64Var(&lf.maxPrice, "max-price", 0, "highest price")
	return cmd
}

func (lf listFlags) patch(cmd *cobra.Command) collection.FilterPatch {
	patch := collection.SearchFor(lf.search)
	patch.Equals = map[string]string{
		catalog.FieldCategory: lf.category,
		catalog.FieldStatus:   lf.status,
	}

	var price collection.Range
	if cmd.Flags().Changed("min-price") {
		price.Min, price.HasMin = lf.minPrice, true
	}
	if cmd.Flags().Changed("max-price") {
		price.Max, price.HasMax = lf.maxPrice, true
	}
	patch.Ranges = map[string]collection.Range{catalog.FieldPrice: price}
	return patch
}

func renderPage(p collection.Page[catalog.Course]) string {
	if len(p.Entities) == 0 {
		return "No courses"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "CATEGORY", "PRICE", "RATING").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, c := range p.Entities {
		price := "free"
		if c.Price > 0 {
			price = fmt.Sprintf("$%.2f", c.Price)
		}
		t.Row(c.ID, c.Title, string(c.Status), c.Category, price, fmt.Sprintf("%.1f", c.Rating))
	}

	pg := p.Pagination
	return fmt.Sprintf("%s\npage %d/%d · %d courses", t.String(), pg.Page, pg.TotalPages, pg.Total)
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <title>",
		Short: "Print the slug derived from a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.Make(strings.Join(args, " ")))
			return err
		},
	}
}
