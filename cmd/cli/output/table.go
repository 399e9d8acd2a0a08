// Package output renders CLI results.
package output

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table prints rows as an aligned table to stdout.
func Table(header table.Row, rows []table.Row) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(header)
	w.AppendRows(rows)
	w.Render()
}
