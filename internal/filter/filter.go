package filter

import (
	"strings"

	"github.com/amishk599/jobtrend/internal/model"
)

// KeywordFilter matches records whose title or company contains any of the
// keywords and whose source is one of the allowed sources. Matching is
// case-insensitive. Empty lists are treated as "match all".
type KeywordFilter struct {
	keywords []string
	sources  []string
}

var _ model.RecordFilter = (*KeywordFilter)(nil)

// NewKeywordFilter returns a filter that requires both a keyword match and a
// source match.
func NewKeywordFilter(keywords []string, sources []string) *KeywordFilter {
	return &KeywordFilter{
		keywords: lowerAll(keywords),
		sources:  lowerAll(sources),
	}
}

// Match returns true if the record passes both the keyword and source lists.
func (f *KeywordFilter) Match(rec model.JobRecord) bool {
	if len(f.keywords) > 0 {
		haystack := strings.ToLower(rec.Title + " " + rec.Company)
		matched := false
		for _, kw := range f.keywords {
			if strings.Contains(haystack, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.sources) > 0 {
		source := strings.ToLower(rec.Source)
		matched := false
		for _, s := range f.sources {
			if source == s {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the records that match f, in order.
func Apply(f model.RecordFilter, records []model.JobRecord) []model.JobRecord {
	out := []model.JobRecord{}
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
