package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

// maxRenderedRows keeps huge "all rows" answers readable in a terminal.
const maxRenderedRows = 50

func renderAsk(w io.Writer, resp *askResponse) {
	if resp.Error != "" {
		pterm.Error.WithWriter(w).Println(resp.Error)
		if resp.Details != "" {
			pterm.Fprintln(w, resp.Details)
		}
		if resp.SQL != nil {
			pterm.Fprintln(w, pterm.Gray("SQL: "+*resp.SQL))
		}
		if resp.Suggestion != "" {
			pterm.Fprintln(w, strings.TrimLeft(resp.Suggestion, "\n"))
		}
		return
	}

	if resp.SQL != nil {
		pterm.Fprintln(w, pterm.Gray(*resp.SQL))
	}
	if resp.Answer != "" {
		pterm.Success.WithWriter(w).Println(stripMarkdown(resp.Answer))
	}

	if resp.IsMetaQuestion && resp.RowCount <= 1 {
		return
	}
	renderRows(w, resp.Data)
}

func renderRows(w io.Writer, rows []map[string]any) {
	if len(rows) == 0 {
		return
	}

	table := rowsTable(rows)
	_ = pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(table).Render()

	if len(rows) > maxRenderedRows {
		pterm.Info.WithWriter(w).Printfln("%d more row(s) not shown", len(rows)-maxRenderedRows)
	}
}

// rowsTable builds a header plus up to maxRenderedRows rows. Column order
// is not carried in the JSON body, so columns are sorted by name.
func rowsTable(rows []map[string]any) pterm.TableData {
	seen := make(map[string]struct{})
	var header []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	data := pterm.TableData{header}
	for i, row := range rows {
		if i == maxRenderedRows {
			break
		}
		line := make([]string, len(header))
		for j, col := range header {
			line[j] = formatCell(row[col])
		}
		data = append(data, line)
	}
	return data
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case float64:
		// JSON numbers; integers print without a fraction.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func stripMarkdown(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func renderSchema(w io.Writer, schema *schemaResponse) {
	pterm.Info.WithWriter(w).Printfln("%d table(s)", schema.TableCount)

	data := pterm.TableData{{"Schema", "Table"}}
	for _, t := range schema.Tables {
		data = append(data, []string{t.SchemaName, t.TableName})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func renderPing(w io.Writer, ping *pingResponse, conn *connectionResponse) {
	data := pterm.TableData{
		{"Service", ping.Service},
		{"Version", ping.Version},
		{"Go", ping.GoVersion},
		{"Host", ping.Hostname},
		{"Environment", ping.Environment},
	}
	_ = pterm.DefaultTable.WithWriter(w).WithData(data).Render()

	if conn.Success {
		pterm.Success.WithWriter(w).Println("Database reachable")
		return
	}
	pterm.Error.WithWriter(w).Println("Database unreachable: " + conn.Error)
}
