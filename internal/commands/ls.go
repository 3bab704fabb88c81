package commands

import (
	"context"
	"io"
	"time"

	"github.com/djboot/djboot/internal/render"
	"github.com/djboot/djboot/internal/store"
)

// LSOpts holds options for the ls command.
type LSOpts struct {
	// JSON outputs machine-readable JSON.
	JSON bool
}

// LS executes the djboot ls command: it lists provisioned projects from the
// local index, newest first. Read-only; no state files are mutated.
func LS(ctx context.Context, deps Deps, opts LSOpts, stdout io.Writer) error {
	st := store.NewStore(deps.FS, deps.DataDir, time.Now)

	idx, err := st.LoadIndex()
	if err != nil {
		return err
	}

	summaries := make([]render.ProjectSummary, 0, len(idx.Projects))
	for _, entry := range idx.SortedEntries() {
		summary := render.ProjectSummary{
			Name:          entry.Name,
			Path:          entry.Path,
			PythonVersion: entry.PythonVersion,
			Docker:        entry.Docker,
		}
		if ts, err := time.Parse(time.RFC3339, entry.CreatedAt); err == nil {
			summary.CreatedAt = &ts
		}
		if _, err := deps.FS.Stat(entry.Path); err == nil {
			summary.Present = true
		}
		summaries = append(summaries, summary)
	}

	if opts.JSON {
		return render.WriteLSJSON(stdout, summaries)
	}
	return render.WriteLSHuman(stdout, summaries, time.Now())
}
