package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shelfkeeper/library"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage library users",
	}
	cmd.AddCommand(
		newUserAddCmd(a),
		newUserListCmd(a),
		newUserShowCmd(a),
		newUserUpdateCmd(a),
		newUserRemoveCmd(a),
	)
	return cmd
}

type userFlags struct {
	name, email, role, since string
}

func (f *userFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "full name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.role, "role", string(library.RoleMember), "member, librarian or admin")
	fs.StringVar(&f.since, "since", "", "membership start date, YYYY-MM-DD (default today)")
}

func (f *userFlags) apply(fs *pflag.FlagSet, u *library.User, onlyChanged bool) error {
	set := func(name string) bool { return !onlyChanged || fs.Changed(name) }

	if set("name") {
		u.Name = f.name
	}
	if set("email") {
		u.Email = f.email
	}
	if set("role") {
		u.Role = library.UserRole(strings.ToLower(f.role))
	}
	if set("since") {
		if f.since == "" {
			u.MemberSince = library.DateOf(time.Now())
			return nil
		}
		d, err := library.ParseDate(f.since)
		if err != nil {
			return &library.ValidationError{Entity: "user", Fields: map[string]string{"memberSince": "must be a YYYY-MM-DD date"}}
		}
		u.MemberSince = d
	}
	return nil
}

func newUserAddCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Register a user",
		Example: `  shelfkeeper user add --name "Ada Lovelace" --email ada@example.com --role librarian`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u library.User
			if err := f.apply(cmd.Flags(), &u, false); err != nil {
				return err
			}
			id, err := a.mgr.AddUser(u)
			if err != nil {
				return err
			}
			if a.out.structured() {
				u, _ = a.mgr.GetUser(id)
				return a.out.encode(u)
			}
			a.out.printf("Added user '%s' with ID %s\n", u.Name, id)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := a.mgr.GetAllUsers()
			if a.out.structured() {
				return a.out.encode(users)
			}
			if len(users) == 0 {
				a.out.println("No users registered.")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Role.Label(), u.MemberSince.String(), u.Email})
			}
			a.out.table([]column{{"ID", 36}, {"Name", 24}, {"Role", 9}, {"Since", 10}, {"Email", 0}}, rows)
			return nil
		},
	}
}

// userDetail is a user with their loans split by state.
type userDetail struct {
	library.User `yaml:",inline"`

	Current  []library.LoanView `json:"currentLoans" yaml:"currentLoans"`
	Returned []library.LoanView `json:"returnedLoans" yaml:"returnedLoans"`
	Overdue  int                `json:"overdueCount" yaml:"overdueCount"`
}

func newUserShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <userId>",
		Short: "Show a user and their loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.mgr.GetUser(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "user", ID: args[0]}
			}
			sum := library.SummarizeUserLoans(a.mgr.GetUserLoans(u.ID))
			d := userDetail{
				User:     u,
				Current:  a.mgr.DescribeLoans(sum.Current),
				Returned: a.mgr.DescribeLoans(sum.Returned),
				Overdue:  sum.Overdue,
			}
			if a.out.structured() {
				return a.out.encode(d)
			}

			a.out.printf("ID:            %s\n", u.ID)
			a.out.printf("Name:          %s\n", u.Name)
			a.out.printf("Email:         %s\n", u.Email)
			a.out.printf("Role:          %s\n", u.Role.Label())
			a.out.printf("Member since:  %s\n", u.MemberSince)
			a.out.printf("Current loans: %d (%d overdue)\n", len(d.Current), d.Overdue)
			a.out.printf("Returned:      %d\n", len(d.Returned))
			if len(d.Current) > 0 {
				a.out.println("\nCurrently borrowed:")
				printLoans(a.out, d.Current)
			}
			return nil
		},
	}
}

func newUserUpdateCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "update <userId>",
		Short: "Change fields of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.mgr.GetUser(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "user", ID: args[0]}
			}
			if err := f.apply(cmd.Flags(), &u, true); err != nil {
				return err
			}
			if err := a.mgr.UpdateUser(u); err != nil {
				return err
			}
			if a.out.structured() {
				return a.out.encode(u)
			}
			a.out.printf("Updated user '%s' (ID: %s)\n", u.Name, u.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newUserRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <userId>",
		Aliases: []string{"rm"},
		Short:   "Remove a user",
		Long: `Remove a user. Their loans are kept, and any book they still hold stays
borrowed until the loan is returned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.mgr.GetUser(args[0])
			if !ok {
				return &library.NotFoundError{Kind: "user", ID: args[0]}
			}
			if err := a.mgr.RemoveUser(u.ID); err != nil {
				return err
			}
			a.out.printf("Removed user '%s' (ID: %s)\n", u.Name, u.ID)
			return nil
		},
	}
}
