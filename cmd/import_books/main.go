// Command import_books loads books and users from a YAML or JSON catalog
// into a shelfkeeper database.
//
//	import_books [--db library.db] [--fresh] catalog.yaml
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"shelfkeeper/config"
	"shelfkeeper/library"
)

// catalog is the import file layout. Omitted fields get the same defaults as
// "shelfkeeper book add" and "shelfkeeper user add".
type catalog struct {
	Books []library.Book `json:"books" yaml:"books"`
	Users []library.User `json:"users" yaml:"users"`
}

func main() {
	if err := newImportCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:           "import_books <catalog.yaml|catalog.json>",
		Short:         "Import books and users from a catalog file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			cat, err := readCatalog(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if fresh {
				if err := removeDatabase(out, cfg.DBPath); err != nil {
					return err
				}
			}

			manager, err := library.NewLibraryManager(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer manager.Close()

			return importCatalog(out, manager, cat, library.DateOf(time.Now()))
		},
	}
	cmd.Flags().StringP(config.KeyDB, "d", "library.db", "path to the library database")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "delete the existing database before importing")
	return cmd
}

func readCatalog(path string) (catalog, error) {
	var cat catalog
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cat, fmt.Errorf("reading catalog: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &cat)
	} else {
		err = yaml.Unmarshal(data, &cat)
	}
	if err != nil {
		return cat, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return cat, nil
}

// removeDatabase deletes the database files while holding the owner lock, so
// a library still open in another process is left alone.
func removeDatabase(out io.Writer, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	lock := flock.New(library.LockPath(dbPath))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", dbPath, library.ErrLocked)
	}
	defer lock.Unlock()

	fmt.Fprintln(out, "Cleaning up existing database files...")
	for _, file := range []string{dbPath, dbPath + "-shm", dbPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(out, "Warning: Could not remove %s: %v\n", file, err)
		}
	}
	return nil
}

// withBookDefaults fills the fields a catalog entry may leave out.
func withBookDefaults(b library.Book, today library.Date) library.Book {
	if b.Year == 0 {
		b.Year = today.Year
	}
	if b.Location == (library.BookLocation{}) {
		b.Location = library.DefaultLocation
	}
	if b.Status == "" {
		b.Status = library.BookAvailable
	}
	return b
}

func withUserDefaults(u library.User, today library.Date) library.User {
	if u.Role == "" {
		u.Role = library.RoleMember
	}
	if u.MemberSince.IsZero() {
		u.MemberSince = today
	}
	return u
}

// importCatalog adds every entry, reporting each one. Entries that fail
// validation are counted and skipped.
func importCatalog(out io.Writer, manager *library.LibraryManager, cat catalog, today library.Date) error {
	successCount := 0
	errorCount := 0

	fmt.Fprintf(out, "Importing %d book(s) and %d user(s)...\n", len(cat.Books), len(cat.Users))
	for _, b := range cat.Books {
		fmt.Fprintf(out, "Importing: %s by %s... ", b.Title, b.Author)
		id, err := manager.AddBook(withBookDefaults(b, today))
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %s)\n", id)
		successCount++
	}
	for _, u := range cat.Users {
		fmt.Fprintf(out, "Registering: %s... ", u.Name)
		id, err := manager.AddUser(withUserDefaults(u, today))
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %s)\n", id)
		successCount++
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d entries\n", successCount)
	fmt.Fprintf(out, "Errors: %d\n", errorCount)

	if successCount > 0 {
		books := manager.GetAllBooks()
		fmt.Fprintln(out, "\nCatalog:")
		fmt.Fprintf(out, "%-50s %-30s %s\n", "Title", "Author", "Location")
		fmt.Fprintln(out, strings.Repeat("-", 110))
		for _, book := range books {
			fmt.Fprintf(out, "%-50s %-30s %s\n", truncateString(book.Title, 50), truncateString(book.Author, 30), book.Location)
		}
	}
	if errorCount > 0 && successCount == 0 {
		return fmt.Errorf("no entries imported")
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
