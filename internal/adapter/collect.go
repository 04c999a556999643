package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/amishk599/jobtrend/internal/model"
)

// collect runs f and converts any failure, including a panic, into an
// empty result so one source's outage never reaches the coordinator.
func collect(ctx context.Context, logger *slog.Logger, source string, f model.JobFetcher) (jobs []model.JobRecord) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("collector panicked", "source", source, "panic", r)
			jobs = []model.JobRecord{}
		}
	}()

	out, err := f.FetchJobs(ctx)
	if err != nil {
		logger.Error("collecting jobs failed", "source", source, "error", err)
		return []model.JobRecord{}
	}
	if out == nil {
		return []model.JobRecord{}
	}
	return out
}

// text decodes any JSON scalar into a string. null, objects and arrays
// become "" so an unexpected field type degrades instead of failing the
// whole payload.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case 'n', '{', '[':
		*t = ""
	default:
		// numbers and booleans keep their literal form
		*t = text(data)
	}
	return nil
}

func (t text) String() string {
	return string(t)
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
