package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/platform/markdown"
)

// JournalHeader is the frontmatter of a journal note.
type JournalHeader struct {
	SchemaVersion   int    `yaml:"schema_version"`
	ID              int64  `yaml:"id"`
	StartTime       string `yaml:"start_time"`
	EndTime         string `yaml:"end_time"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Quality         int    `yaml:"quality"`
}

// MarkdownJournal writes one note per night, grouped by the UTC date the night started.
type MarkdownJournal struct{}

func NewMarkdownJournal() MarkdownJournal {
	return MarkdownJournal{}
}

func (MarkdownJournal) Write(_ context.Context, root string, night domain.Night) (string, error) {
	date := night.StartTime.UTC()
	dir := filepath.Join(root, date.Format("2006"), date.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%d.md", date.Format("02"), night.ID))

	meta := JournalHeader{
		SchemaVersion:   domain.SchemaVersion,
		ID:              night.ID,
		StartTime:       date.Format(time.RFC3339),
		EndTime:         night.EndTime.UTC().Format(time.RFC3339),
		DurationMinutes: int(night.Duration().Minutes()),
		Quality:         night.Quality,
	}
	rating := "not rated"
	if night.Rated() {
		rating = fmt.Sprintf("%d/%d", night.Quality, domain.MaxQuality)
	}
	body := fmt.Sprintf("# Night of %s\n\n- Slept: %s\n- Woke: %s\n- Duration: %s\n- Quality: %s\n",
		date.Format("Monday, January 2 2006"),
		date.Format("15:04"),
		night.EndTime.UTC().Format("15:04"),
		night.Duration().Round(time.Minute),
		rating,
	)
	rendered, err := markdown.Encode(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}
