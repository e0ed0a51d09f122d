package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"shelfkeeper/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printer renders command results as aligned tables or as JSON/YAML documents.
type printer struct {
	w      io.Writer
	format string
	// width of the terminal, 0 when not writing to one.
	width int
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format, width: termWidth(w)}
}

func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// structured reports whether results should be encoded rather than tabulated.
func (p *printer) structured() bool { return p.format != config.FormatTable }

func (p *printer) encode(v any) error {
	switch p.format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(b))
		return err
	}
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

type column struct {
	title string
	width int
}

// table prints a header, a rule and one line per row. On a terminal the last
// column is cut to fit the line; otherwise it is printed in full.
func (p *printer) table(cols []column, rows [][]string) {
	used := 0
	for _, c := range cols[:len(cols)-1] {
		used += c.width + 1
	}
	last := 1 << 30
	rule := used + 20
	if p.width > 0 {
		last = max(p.width-used, 10)
		rule = min(rule, p.width)
	}

	line := func(cells []string) {
		var sb strings.Builder
		for i, c := range cols {
			w := c.width
			if i == len(cols)-1 {
				sb.WriteString(truncateString(cells[i], last))
				break
			}
			cell := truncateString(cells[i], w)
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(cell)+1))
		}
		fmt.Fprintln(p.w, strings.TrimRight(sb.String(), " "))
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	line(titles)
	fmt.Fprintln(p.w, strings.Repeat("-", rule))
	for _, r := range rows {
		line(r)
	}
}

func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
