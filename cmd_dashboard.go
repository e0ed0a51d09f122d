package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelfkeeper/config"
	"shelfkeeper/library"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		field, status string
		year          int
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Long: `Search the catalog by case-insensitive substring. Without --field the query
is matched against title, author, publisher and ISBN.`,
		Example: `  shelfkeeper search dune --field title
  shelfkeeper search --status available --year 1965`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := library.SearchFilters{
				Field:  library.SearchField(strings.ToLower(field)),
				Status: library.BookStatus(strings.ToLower(status)),
				Year:   year,
			}
			if len(args) == 1 {
				f.Query = args[0]
			}
			if !f.Field.Valid() {
				return fmt.Errorf("unknown search field %q", field)
			}
			if f.Status != "" && !f.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			books := a.mgr.SearchBooks(f)
			if a.out.structured() {
				return a.out.encode(books)
			}
			if len(books) == 0 {
				a.out.printf("No books found matching '%s'.\n", f.Query)
				return nil
			}
			a.out.printf("Found %d book(s) matching '%s':\n", len(books), f.Query)
			printBooks(a.out, books)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&field, "field", string(library.FieldAll), "all, title, author, publisher or isbn")
	fs.StringVar(&status, "status", "", "only books with this status")
	fs.IntVar(&year, "year", 0, "only books published in this year")
	return cmd
}

// dashboard is the stats view with its derived figures.
type dashboard struct {
	library.LibraryStats `yaml:",inline"`

	CheckedOutBooks     int                `json:"checkedOutBooks" yaml:"checkedOutBooks"`
	AvailabilityPercent int                `json:"availabilityPercent" yaml:"availabilityPercent"`
	LoansPerUser        float64            `json:"loansPerUser" yaml:"loansPerUser"`
	RecentOverdue       []library.LoanView `json:"recentOverdue" yaml:"recentOverdue"`
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.mgr.GetLibraryStats()
			d := dashboard{
				LibraryStats:        st,
				CheckedOutBooks:     st.CheckedOutBooks(),
				AvailabilityPercent: st.AvailabilityPercent(),
				LoansPerUser:        st.LoansPerUser(),
				RecentOverdue:       a.mgr.RecentOverdue(),
			}
			if a.out.structured() {
				return a.out.encode(d)
			}

			a.out.println("Library Statistics")
			a.out.println("==================")
			a.out.printf("Total books:       %d\n", st.TotalBooks)
			a.out.printf("Available:         %d (%d%%)\n", st.AvailableBooks, d.AvailabilityPercent)
			a.out.printf("Checked out:       %d\n", d.CheckedOutBooks)
			a.out.printf("Active loans:      %d\n", st.ActiveLoans)
			a.out.printf("Overdue loans:     %d\n", st.OverdueLoans)
			a.out.printf("Registered users:  %d\n", st.TotalUsers)
			a.out.printf("Loans per user:    %.2f\n", d.LoansPerUser)

			if len(d.RecentOverdue) > 0 {
				a.out.println("\nOverdue:")
				printLoans(a.out, d.RecentOverdue)
			}
			return nil
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle|light|dark]",
		Short:     "Show or change the display theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle", string(library.ThemeLight), string(library.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := a.mgr.Theme()
			if len(args) == 1 {
				var err error
				if args[0] == "toggle" {
					theme, err = a.mgr.ToggleTheme()
				} else {
					theme = library.Theme(args[0])
					err = a.mgr.SetTheme(theme)
				}
				if err != nil {
					return err
				}
			}
			if a.out.structured() {
				return a.out.encode(map[string]library.Theme{"theme": theme})
			}
			a.out.printf("Theme: %s\n", theme)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the whole library as JSON (or YAML with --format yaml)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := *a.out
			if p.format == config.FormatTable {
				p.format = config.FormatJSON
			}
			return p.encode(a.mgr.Export())
		},
	}
}
