package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shelfkeeper/config"
	"shelfkeeper/library"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line and releases the database afterwards.
func run(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// app holds what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	mgr     *library.LibraryManager
	out     *printer
	logFile io.Closer
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, logFile, err := initLogging(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.logFile = logFile
	logger.Debug("config resolved", "db", cfg.DBPath, "format", cfg.Format, "source", cfg.Source)

	mgr, err := library.NewLibraryManager(cfg.DBPath, library.WithLogger(logger))
	if err != nil {
		if errors.Is(err, library.ErrLocked) {
			return fmt.Errorf("%s: %w", cfg.DBPath, err)
		}
		return fmt.Errorf("opening database: %w", err)
	}
	a.mgr = mgr
	a.out = newPrinter(cmd.OutOrStdout(), cfg.Format)
	return nil
}

func (a *app) close() error {
	var err error
	if a.mgr != nil {
		err = a.mgr.Close()
		a.mgr = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shelfkeeper",
		Short: "Manage a small library's catalog, patrons and loans",
		Long: `shelfkeeper keeps a library's books, users and loans in a single SQLite file.

Books are lent for 14 days. Loans past their due date are flagged overdue
automatically whenever the library is read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringP(config.KeyDB, "d", "library.db", "path to the library database")
	pf.StringP(config.KeyFormat, "f", config.FormatTable, "output format: table, json or yaml")
	pf.String(config.KeyLogLevel, "warn", "log level: debug, info, warn or error")
	pf.String(config.KeyLogFile, "", "log file (default is shelfkeeper.log in the user cache dir)")

	root.AddCommand(
		newBookCmd(a),
		newUserCmd(a),
		newCheckoutCmd(a),
		newReturnCmd(a),
		newLoansCmd(a),
		newSearchCmd(a),
		newStatsCmd(a),
		newThemeCmd(a),
		newExportCmd(a),
	)
	return root
}
