package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobtrend/internal/fetch"
	"github.com/amishk599/jobtrend/internal/model"
)

// RemotiveURL is the public Remotive remote jobs API. The legacy remotive.io
// host serves the same API; config can point a source at either.
const RemotiveURL = "https://remotive.com/api/remote-jobs"

// remotiveJob represents a single job in the Remotive API response.
type remotiveJob struct {
	Title                     text `json:"title"`
	CompanyName               text `json:"company_name"`
	CandidateRequiredLocation text `json:"candidate_required_location"`
	Description               text `json:"description"`
	URL                       text `json:"url"`
}

// remotiveResponse is the top-level Remotive API response.
type remotiveResponse struct {
	Jobs *[]remotiveJob `json:"jobs"`
}

// RemotiveAdapter fetches jobs from the Remotive JSON API.
type RemotiveAdapter struct {
	url    string
	client *fetch.Client
	logger *slog.Logger
}

// NewRemotiveAdapter creates a new adapter. An empty url selects RemotiveURL.
func NewRemotiveAdapter(url string, client *fetch.Client, logger *slog.Logger) *RemotiveAdapter {
	if url == "" {
		url = RemotiveURL
	}
	return &RemotiveAdapter{
		url:    url,
		client: client,
		logger: logger,
	}
}

func (a *RemotiveAdapter) Name() string { return model.SourceRemotive }

// FetchJobs retrieves the remote jobs list and normalizes each entry.
func (a *RemotiveAdapter) FetchJobs(ctx context.Context) ([]model.JobRecord, error) {
	a.logger.Info("fetching jobs", "source", a.Name())

	resp, err := a.client.Fetch(ctx, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("remotive fetch: %w", err)
	}

	var payload remotiveResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("remotive decode: %w", err)
	}
	if payload.Jobs == nil {
		a.logger.Warn("response has no jobs key", "source", a.Name())
		return []model.JobRecord{}, nil
	}

	jobs := make([]model.JobRecord, 0, len(*payload.Jobs))
	for _, rj := range *payload.Jobs {
		jobs = append(jobs, model.JobRecord{
			Title:       rj.Title.String(),
			Company:     rj.CompanyName.String(),
			Location:    rj.CandidateRequiredLocation.String(),
			Description: rj.Description.String(),
			URL:         rj.URL.String(),
			Source:      model.SourceRemotive,
		})
	}

	a.logger.Info("scraped jobs", "source", a.Name(), "count", len(jobs))
	return jobs, nil
}

// CollectJobs is FetchJobs with failures logged and turned into an empty result.
func (a *RemotiveAdapter) CollectJobs(ctx context.Context) []model.JobRecord {
	return collect(ctx, a.logger, a.Name(), a)
}
