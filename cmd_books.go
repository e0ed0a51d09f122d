package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shelfkeeper/library"
)

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "book",
		Aliases: []string{"books"},
		Short:   "Manage the catalog",
	}
	cmd.AddCommand(
		newBookAddCmd(a),
		newBookListCmd(a),
		newBookShowCmd(a),
		newBookUpdateCmd(a),
		newBookRemoveCmd(a),
	)
	return cmd
}

// bookFlags are the editable fields of a book.
type bookFlags struct {
	title, author, publisher, isbn string
	block, section                 string
	status, cover                  string
	year, row                      int
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "book title")
	fs.StringVar(&f.author, "author", "", "author")
	fs.StringVar(&f.publisher, "publisher", "", "publisher")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN")
	fs.IntVar(&f.year, "year", time.Now().Year(), "publication year")
	fs.StringVar(&f.block, "block", library.DefaultLocation.Block, "shelf block")
	fs.IntVar(&f.row, "row", library.DefaultLocation.Row, "shelf row")
	fs.StringVar(&f.section, "section", library.DefaultLocation.Section, "shelf section")
	fs.StringVar(&f.status, "status", string(library.BookAvailable), "available, borrowed, reserved or maintenance")
	fs.StringVar(&f.cover, "cover", "", "cover image URL")
}

// apply copies the flags into b. With onlyChanged set, flags left at their
// defaults do not touch b.
func (f *bookFlags) apply(fs *pflag.FlagSet, b *library.Book, onlyChanged bool) {
	set := func(name string) bool { return !onlyChanged || fs.Changed(name) }

	if set("title") {
		b.Title = f.title
	}
	if set("author") {
		b.Author = f.author
	}
	if set("publisher") {
		b.Publisher = f.publisher
	}
	if set("isbn") {
		b.ISBN = f.isbn
	}
	if set("year") {
		b.Year = f.year
	}
	if set("block") {
		b.Location.Block = f.block
	}
	if set("row") {
		b.Location.Row = f.row
	}
	if set("section") {
		b.Location.Section = f.section
	}
	if set("status") {
		b.Status = library.BookStatus(strings.ToLower(f.status))
	}
	if set("cover") {
		b.CoverImage = f.cover
	}
}

func newBookAddCmd(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Example: `  shelfkeeper book add --title Dune --author "Frank Herbert" \
    --publisher Chilton --isbn 9780441013593 --year 1965 --block C --row 2 --section Fiction`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var b library.Book
			f.apply(cmd.Flags(), &b, false)

			id, err := a.mgr.AddBook(b)
			if err != nil {
				return err
			}
			if a.out.structured() {
				b, _ = a.mgr.GetBook(id)
				return a.out.encode(b)
			}
			a.out.printf("Added book %q with ID %s\n", b.Title, id)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newBookListCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := library.SearchFilters{Status: library.BookStatus(strings.ToLower(status))}
			if filters.Status != "" && !filters.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			books := a.mgr.SearchBooks(filters)
			if a.out.structured() {
				return a.out.encode(books)
			}
			if len(books) == 0 {
				a.out.println("No books in library.")
				return nil
			}
			printBooks(a.out, books)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only books with this status")
	return cmd
}

func printBooks(p *printer, books []library.Book) {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{b.ID, b.Title, b.Author, strconv.Itoa(b.Year), b.Status.Label(), b.Location.String()})
	}
	p.table([]column{
		{"ID", 36}, {"Title", 28}, {"Author", 20}, {"Year", 4}, {"Status", 17}, {"Location", 0},
	}, rows)
}

// bookDetail is a book with its loan history.
type bookDetail struct {
	library.Book `yaml:",inline"`

	Loans []library.LoanView `json:"loans" yaml:"loans"`
}

func newBookShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <bookId>",
		Short: "Show a book and its loan history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ok := a.mgr.GetBook(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "book", ID: args[0]}
			}
			history := a.mgr.DescribeLoans(a.mgr.GetBookLoans(b.ID))
			if a.out.structured() {
				return a.out.encode(bookDetail{Book: b, Loans: history})
			}

			a.out.printf("ID:         %s\n", b.ID)
			a.out.printf("Title:      %s\n", b.Title)
			a.out.printf("Author:     %s\n", b.Author)
			a.out.printf("Publisher:  %s\n", b.Publisher)
			a.out.printf("Year:       %d\n", b.Year)
			a.out.printf("ISBN:       %s\n", b.ISBN)
			a.out.printf("Location:   %s\n", b.Location)
			a.out.printf("Status:     %s\n", b.Status.Label())
			if b.CoverImage != "" {
				a.out.printf("Cover:      %s\n", b.CoverImage)
			}

			if len(history) == 0 {
				a.out.println("\nNever borrowed.")
				return nil
			}
			a.out.println("\nLoan history:")
			printLoans(a.out, history)
			return nil
		},
	}
}

func newBookUpdateCmd(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "update <bookId>",
		Short: "Change fields of a book",
		Long: `Change fields of a book. Only the flags given are applied.

Borrowed is managed by checkout and return: a book on loan cannot be given
another status, and a book without a loan cannot be marked borrowed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ok := a.mgr.GetBook(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "book", ID: args[0]}
			}
			f.apply(cmd.Flags(), &b, true)
			if err := a.mgr.UpdateBook(b); err != nil {
				return err
			}
			if a.out.structured() {
				return a.out.encode(b)
			}
			a.out.printf("Updated book %q (ID: %s)\n", b.Title, b.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newBookRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <bookId>",
		Aliases: []string{"rm"},
		Short:   "Remove a book from the catalog",
		Long: `Remove a book from the catalog. Its loans are kept and show the book as
"Unknown Book" from then on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ok := a.mgr.GetBook(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "book", ID: args[0]}
			}
			if err := a.mgr.RemoveBook(b.ID); err != nil {
				return err
			}
			a.out.printf("Removed book %q (ID: %s)\n", b.Title, b.ID)
			return nil
		},
	}
}
