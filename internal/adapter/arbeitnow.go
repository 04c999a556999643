package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobtrend/internal/fetch"
	"github.com/amishk599/jobtrend/internal/model"
)

// ArbeitnowURL is the public Arbeitnow job board API.
const ArbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"

// arbeitnowJob represents a single job in the Arbeitnow API response.
type arbeitnowJob struct {
	Title       text `json:"title"`
	CompanyName text `json:"company_name"`
	Location    text `json:"location"`
	Description text `json:"description"`
}

// arbeitnowResponse is the top-level Arbeitnow API response. Data is a
// pointer so a missing key can be told apart from an empty list.
type arbeitnowResponse struct {
	Data *[]arbeitnowJob `json:"data"`
}

// ArbeitnowAdapter fetches jobs from the Arbeitnow JSON API.
type ArbeitnowAdapter struct {
	url    string
	client *fetch.Client
	logger *slog.Logger
}

// NewArbeitnowAdapter creates a new adapter. An empty url selects ArbeitnowURL.
func NewArbeitnowAdapter(url string, client *fetch.Client, logger *slog.Logger) *ArbeitnowAdapter {
	if url == "" {
		url = ArbeitnowURL
	}
	return &ArbeitnowAdapter{
		url:    url,
		client: client,
		logger: logger,
	}
}

func (a *ArbeitnowAdapter) Name() string { return model.SourceArbeitnow }

// FetchJobs retrieves the job board and normalizes each entry. URL and
// Experience are left empty; Arbeitnow listings are not linked here.
func (a *ArbeitnowAdapter) FetchJobs(ctx context.Context) ([]model.JobRecord, error) {
	a.logger.Info("fetching jobs", "source", a.Name())

	resp, err := a.client.Fetch(ctx, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("arbeitnow fetch: %w", err)
	}

	var payload arbeitnowResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("arbeitnow decode: %w", err)
	}
	if payload.Data == nil {
		a.logger.Warn("response has no data key", "source", a.Name())
		return []model.JobRecord{}, nil
	}

	jobs := make([]model.JobRecord, 0, len(*payload.Data))
	for _, aj := range *payload.Data {
		jobs = append(jobs, model.JobRecord{
			Title:       aj.Title.String(),
			Company:     aj.CompanyName.String(),
			Location:    aj.Location.String(),
			Description: aj.Description.String(),
			Source:      model.SourceArbeitnow,
		})
	}

	a.logger.Info("scraped jobs", "source", a.Name(), "count", len(jobs))
	return jobs, nil
}

// CollectJobs is FetchJobs with failures logged and turned into an empty result.
func (a *ArbeitnowAdapter) CollectJobs(ctx context.Context) []model.JobRecord {
	return collect(ctx, a.logger, a.Name(), a)
}
