package main

import (
	"github.com/spf13/cobra"

	"shelfkeeper/library"
)

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <bookId> <userId>",
		Short: "Lend an available book to a user for 14 days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := a.mgr.CheckoutBook(args[0], args[1])
			if err != nil {
				return err
			}
			loan, _ := a.mgr.GetLoan(loanID)
			if a.out.structured() {
				return a.out.encode(loan)
			}
			v := a.mgr.DescribeLoans([]library.Loan{loan})[0]
			a.out.printf("Checked out %q to %s. Loan %s is due %s.\n", v.BookTitle, v.UserName, loan.ID, loan.DueDate)
			return nil
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <loanId>",
		Short: "Return the book of an open loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.mgr.ReturnBook(args[0]); err != nil {
				return err
			}
			loan, _ := a.mgr.GetLoan(args[0])
			if a.out.structured() {
				return a.out.encode(loan)
			}
			v := a.mgr.DescribeLoans([]library.Loan{loan})[0]
			a.out.printf("Returned %q from %s (loan %s).\n", v.BookTitle, v.UserName, loan.ID)
			return nil
		},
	}
}

func newLoansCmd(a *app) *cobra.Command {
	var (
		userID, bookID  string
		overdue, active bool
	)
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List loans",
		Long: `List loans in the order they were made. Filters combine.

--active lists open loans, overdue ones included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var loans []library.Loan
			switch {
			case overdue:
				loans = a.mgr.GetOverdueLoans()
			case active:
				loans = a.mgr.GetActiveLoans()
			case userID != "":
				loans = a.mgr.GetUserLoans(userID)
			case bookID != "":
				loans = a.mgr.GetBookLoans(bookID)
			default:
				loans = a.mgr.GetAllLoans()
			}
			loans = filterLoans(loans, func(l library.Loan) bool {
				return (userID == "" || l.UserID == userID) && (bookID == "" || l.BookID == bookID)
			})

			views := a.mgr.DescribeLoans(loans)
			if a.out.structured() {
				return a.out.encode(views)
			}
			if len(views) == 0 {
				a.out.println("No loans found.")
				return nil
			}
			printLoans(a.out, views)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&userID, "user", "", "only loans of this user")
	fs.StringVar(&bookID, "book", "", "only loans of this book")
	fs.BoolVar(&overdue, "overdue", false, "only overdue loans")
	fs.BoolVar(&active, "active", false, "only open loans")
	return cmd
}

func filterLoans(loans []library.Loan, keep func(library.Loan) bool) []library.Loan {
	out := loans[:0:0]
	for _, l := range loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func printLoans(p *printer, views []library.LoanView) {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		returned := ""
		if v.ReturnDate != nil {
			returned = v.ReturnDate.String()
		}
		rows = append(rows, []string{
			v.ID, v.BookTitle, v.UserName,
			v.CheckoutDate.String(), v.DueDate.String(), orNone(returned), v.Status.Label(),
		})
	}
	p.table([]column{
		{"Loan ID", 36}, {"Book", 26}, {"User", 18}, {"Checkout", 10}, {"Due", 10}, {"Returned", 10}, {"Status", 0},
	}, rows)
}
