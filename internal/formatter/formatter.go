// package formatter encodes aggregate reports and renders them, plus run history, for the terminal
package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/chartx/internal/models"
)

// ReportHeader is the first line of every written report.
var ReportHeader = []string{"genre", "country", "main_genre", "streams"}

// WriteCSV writes the header and one comma separated, unquoted line per row.
func WriteCSV(w io.Writer, rows []models.ReportRow) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(ReportHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s,%s,%s,%d\n", row.Genre, row.Country, row.MainGenre, row.Streams); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// ExportToCSV returns the encoded report.
func ExportToCSV(rows []models.ReportRow) ([]byte, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// RenderReport renders up to limit rows as a bordered table. limit <= 0 renders everything.
func RenderReport(rows []models.ReportRow, limit int) string {
	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}

	t := newTable("Genre", "Country", "Main Genre", "Streams")
	for _, row := range shown {
		t.Row(row.Genre, row.Country, row.MainGenre, strconv.FormatInt(row.Streams, 10))
	}

	out := t.String()
	if len(shown) < len(rows) {
		out += "\n" + Help(fmt.Sprintf("... %d more rows", len(rows)-len(shown)))
	}
	return out
}

// RenderClassification renders tag to bucket pairs.
func RenderClassification(tags, buckets []string) string {
	t := newTable("Tag", "Main Genre")
	for i := range tags {
		t.Row(tags[i], buckets[i])
	}
	return t.String()
}

// RenderRuns renders a run history listing.
func RenderRuns(runs []*models.Run) string {
	if len(runs) == 0 {
		return Help("No runs recorded")
	}

	t := newTable("#", "ID", "Status", "Started", "Duration", "Tasks", "Rows", "Output")
	for _, run := range runs {
		t.Row(
			strconv.Itoa(run.Sequence),
			run.ID,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run.Duration()),
			fmt.Sprintf("%d/%d", run.TasksTotal-run.TasksFailed, run.TasksTotal),
			fmt.Sprintf("%d/%d", run.RowsTotal-run.RowsFailed, run.RowsTotal),
			run.OutputPath,
		)
	}
	return t.String()
}

// RenderRun renders one run's details.
func RenderRun(run *models.Run) string {
	var sb strings.Builder

	sb.WriteString(Title(fmt.Sprintf("Run #%d", run.Sequence)) + "\n")
	fmt.Fprintf(&sb, "ID:        %s\n", run.ID)
	fmt.Fprintf(&sb, "Status:    %s\n", statusStyle(run.Status))
	fmt.Fprintf(&sb, "Countries: %s\n", strings.Join(run.Countries, ", "))
	fmt.Fprintf(&sb, "Days:      %d\n", run.Days)
	fmt.Fprintf(&sb, "Tasks:     %d (%d failed)\n", run.TasksTotal, run.TasksFailed)
	fmt.Fprintf(&sb, "Rows:      %d (%d failed)\n", run.RowsTotal, run.RowsFailed)
	fmt.Fprintf(&sb, "Started:   %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		fmt.Fprintf(&sb, "Duration:  %s\n", formatDuration(run.Duration()))
	}
	if run.OutputPath != "" {
		fmt.Fprintf(&sb, "Output:    %s\n", run.OutputPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(&sb, "Error:     %s\n", Err(run.ErrorMessage))
	}
	return sb.String()
}

func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(NewStyle("#626262")).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(headers...)
}

func statusStyle(s models.RunStatus) string {
	switch s {
	case models.RunCompleted:
		return OK(string(s))
	case models.RunFailed:
		return Err(string(s))
	default:
		return Warn(string(s))
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
