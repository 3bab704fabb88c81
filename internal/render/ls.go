// Package render provides output formatting for djboot commands.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ProjectSummary represents one project in ls output (both human and JSON).
// This is the public contract for ls --json output.
type ProjectSummary struct {
	// Name is the Django project name.
	Name string `json:"name"`

	// Path is the absolute project directory.
	Path string `json:"path"`

	// CreatedAt is the provisioning timestamp (null if the record predates
	// timestamping).
	CreatedAt *time.Time `json:"created_at"`

	// PythonVersion is the interpreter version used at provisioning time.
	PythonVersion string `json:"python_version,omitempty"`

	// Docker indicates whether container artifacts were generated.
	Docker bool `json:"docker"`

	// Present indicates whether the project directory still exists on disk.
	Present bool `json:"present"`
}

// LSJSONEnvelope is the stable JSON output format for ls --json.
type LSJSONEnvelope struct {
	SchemaVersion string           `json:"schema_version"`
	Data          []ProjectSummary `json:"data"`
}

// WriteLSJSON writes the ls output as JSON to the given writer.
func WriteLSJSON(w io.Writer, summaries []ProjectSummary) error {
	env := LSJSONEnvelope{
		SchemaVersion: "1.0",
		Data:          summaries,
	}
	// Empty slice, not null, for a valid JSON array
	if env.Data == nil {
		env.Data = []ProjectSummary{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// WriteLSHuman writes the ls output as a whitespace-aligned table.
func WriteLSHuman(w io.Writer, summaries []ProjectSummary, now time.Time) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "no projects provisioned yet")
		return err
	}

	rows := make([][4]string, 0, len(summaries))
	for _, s := range summaries {
		created := ""
		if s.CreatedAt != nil {
			created = formatRelativeTime(*s.CreatedAt, now)
		}
		path := s.Path
		if !s.Present {
			path += " (missing)"
		}
		rows = append(rows, [4]string{s.Name, path, s.PythonVersion, created})
	}

	widths := [4]int{len("NAME"), len("PATH"), len("PYTHON"), len("CREATED")}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if _, err := fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n",
		widths[0], "NAME", widths[1], "PATH", widths[2], "PYTHON", "CREATED"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n",
			widths[0], row[0], widths[1], row[1], widths[2], row[2], row[3]); err != nil {
			return err
		}
	}
	return nil
}

// formatRelativeTime formats a time as a human-friendly relative string.
func formatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
