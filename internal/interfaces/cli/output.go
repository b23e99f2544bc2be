package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

// tabular results can render as a table.
type tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// texter results have a human-readable rendering.
type texter interface {
	WriteText(w io.Writer)
}

// PrintResult writes data in the selected output format. JSON encodes data
// as is; table and text fall back to each other and then to %+v.
func PrintResult(cmd *cobra.Command, format string, data interface{}) error {
	w := cmd.OutOrStdout()
	switch format {
	case OutputJSON:
		return printJSON(w, data)
	case OutputTable:
		if tp, ok := data.(tabular); ok {
			renderTable(w, tp.TableHeaders(), tp.TableRows())
			return nil
		}
	}
	if tx, ok := data.(texter); ok {
		tx.WriteText(w)
		return nil
	}
	if tp, ok := data.(tabular); ok {
		renderTable(w, tp.TableHeaders(), tp.TableRows())
		return nil
	}
	fmt.Fprintf(w, "%+v\n", data)
	return nil
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.AppendBulk(rows)
	t.Render()
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.New(color.FgRed).Sprint("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen).Sprint("OK:"), msg)
}

func severityColor(s planet.Severity) *color.Color {
	switch s {
	case planet.SeverityMatch:
		return color.New(color.FgGreen)
	case planet.SeverityModerate:
		return color.New(color.FgYellow)
	case planet.SeveritySignificant:
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}

func labelColor(label string) *color.Color {
	switch label {
	case planet.LabelPotentiallyHabitable, planet.LabelHighlyHabitable:
		return color.New(color.FgGreen, color.Bold)
	case planet.LabelModeratelyHabitable:
		return color.New(color.FgGreen)
	case planet.LabelMarginal, planet.LabelMarginallyHabitable:
		return color.New(color.FgYellow)
	case planet.LabelUnknown:
		return color.New(color.Faint)
	default:
		return color.New(color.FgRed)
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case planet.StatusSuitable:
		return color.New(color.FgGreen, color.Bold)
	case planet.StatusChallenging:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func formatOptional(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatPercent(p *float64, signed bool) string {
	if p == nil {
		return "-"
	}
	if signed {
		return fmt.Sprintf("%+.1f%%", *p)
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func withUnit(v planet.Value, unit string) string {
	if !v.IsNumeric() || unit == "" {
		return v.String()
	}
	return v.String() + " " + unit
}

//Personal.AI order the ending
