package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// stdout is where command output goes; tests replace it
var stdout io.Writer = os.Stdout

// Table collects rows and prints them aligned in columns. A table with no
// rows prints only a short notice.
type Table struct {
	out  io.Writer
	rows [][]string
}

func NewTable(headers ...string) *Table {
	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	return &Table{out: stdout, rows: [][]string{headers, rule}}
}

func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

func (t *Table) Render() {
	if len(t.rows) == 2 {
		fmt.Fprintln(t.out, "No results")
		return
	}
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func validFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

// printOutput prints data as json or yaml. Table output is rendered by each command.
func printOutput(data interface{}) error {
	if getOutputFormat() == "yaml" {
		return printYAML(data)
	}
	return printJSON(data)
}

func printJSON(data interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(data interface{}) error {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatStatus prefixes an alert status with a marker
func formatStatus(status string) string {
	switch status {
	case "OPENED":
		return "[!] " + status
	case "SEEN":
		return "[*] " + status
	case "SAFE":
		return "[+] " + status
	case "CLOSED":
		return "[-] " + status
	default:
		return status
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
