package model

import (
	"context"
	"time"
)

// Source tags stamped on every record. They identify provenance and are the
// only legal values of JobRecord.Source.
const (
	SourceArbeitnow      = "Arbeitnow"
	SourceRemotive       = "Remotive"
	SourceWeWorkRemotely = "We Work Remotely"
)

// KnownSources lists the source tags in registration order.
var KnownSources = []string{SourceArbeitnow, SourceRemotive, SourceWeWorkRemotely}

// JobRecord is the canonical unit of output shared by every source.
// All fields are plain strings; absent upstream values are "" never nil.
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Experience  string `json:"experience"`  // reserved, always empty for now
	Description string `json:"description"` // raw, may contain HTML markup
	URL         string `json:"url"`         // absolute link to the posting, optional
	Source      string `json:"source"`      // one of the Source* tags
}

// IsKnownSource reports whether tag is one of the registered source tags.
func IsKnownSource(tag string) bool {
	for _, s := range KnownSources {
		if s == tag {
			return true
		}
	}
	return false
}

// JobFetcher fetches job records from a single source and reports failures.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]JobRecord, error)
}

// Collector is the failure-isolated collection contract. CollectJobs never
// fails outward: any error is logged and turned into an empty result.
type Collector interface {
	Name() string
	CollectJobs(ctx context.Context) []JobRecord
}

// SnapshotWriter persists the full aggregate, replacing any previous snapshot.
type SnapshotWriter interface {
	Write(records []JobRecord) error
}

// SourceCount is the number of records one source contributed to a run.
type SourceCount struct {
	Source string
	Count  int
}

// RunRecord summarizes one coordinator run for the history log.
type RunRecord struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	Total           int
	Sources         []SourceCount
	SnapshotWritten bool
}

// RunRecorder stores run summaries.
type RunRecorder interface {
	RecordRun(ctx context.Context, run RunRecord) error
}

// RecordFilter decides whether a record should be shown on a read-side view.
type RecordFilter interface {
	Match(rec JobRecord) bool
}
