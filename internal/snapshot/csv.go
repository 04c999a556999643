// Package snapshot persists the collected aggregate as a flat CSV file that
// downstream cleaning and analysis read back.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/amishk599/jobtrend/internal/model"
)

// DefaultPath is where the snapshot lives unless configured otherwise.
const DefaultPath = "data/all_jobs.csv"

// snapshotMode keeps the file readable by downstream processes; CreateTemp
// alone would leave it owner-only.
const snapshotMode = 0o644

// Header is the snapshot's column order, one column per JobRecord field.
var Header = []string{"title", "company", "location", "experience", "description", "url", "source"}

// ErrNoSnapshot is returned by Read when no snapshot has been written yet.
var ErrNoSnapshot = errors.New("no snapshot")

// CSVWriter replaces the snapshot file on every Write. Writers and readers
// coordinate through an advisory lock next to the file.
type CSVWriter struct {
	path   string
	logger *slog.Logger
}

var _ model.SnapshotWriter = (*CSVWriter)(nil)

// NewCSVWriter returns a writer for path.
func NewCSVWriter(path string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{path: path, logger: logger}
}

// Path returns the snapshot location.
func (w *CSVWriter) Path() string { return w.path }

// Write serializes records and atomically replaces the snapshot, creating the
// containing directory if needed.
func (w *CSVWriter) Write(records []model.JobRecord) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}

	lock := flock.New(lockPath(w.path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking snapshot %s: %w", w.path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	// No-op once the rename succeeded.
	defer os.Remove(tmpName)

	if err := encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Chmod(snapshotMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", w.path, err)
	}

	w.logger.Info("saved snapshot", "path", w.path, "count", len(records))
	return nil
}

func encode(out io.Writer, records []model.JobRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Title, r.Company, r.Location, r.Experience, r.Description, r.URL, r.Source}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read loads a snapshot. Columns are matched by header name, so files with
// reordered or missing columns still load; missing values are "".
func Read(path string) ([]model.JobRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking snapshot %s: %w", path, err)
	}
	defer lock.Unlock()

	return decode(f)
}

func decode(in io.Reader) ([]model.JobRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.JobRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	records := []model.JobRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading snapshot row: %w", err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, model.JobRecord{
			Title:       field("title"),
			Company:     field("company"),
			Location:    field("location"),
			Experience:  field("experience"),
			Description: field("description"),
			URL:         field("url"),
			Source:      field("source"),
		})
	}
	return records, nil
}

func lockPath(path string) string {
	return path + ".lock"
}
