// Package table renders simple aligned CLI tables over stdlib
// text/tabwriter, matching the plain fmt.Printf-column style the
// teacher's CLI uses elsewhere but keeping columns aligned when values
// vary widely in width.
package table

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table accumulates a header and rows before writing them aligned.
type Table struct {
	header []string
	rows   [][]string
	out    io.Writer
}

// New starts a table with the given column headers, writing to stdout.
func New(header ...string) *Table {
	return &Table{header: header, out: os.Stdout}
}

// Row appends one row. Values are formatted with fmt.Sprint.
func (t *Table) Row(values ...interface{}) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	t.rows = append(t.rows, row)
}

// Render writes the table. If there are no rows, it prints empty as-is.
func (t *Table) Render(empty string) {
	if len(t.rows) == 0 && empty != "" {
		fmt.Fprintln(t.out, empty)
		return
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.header, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
