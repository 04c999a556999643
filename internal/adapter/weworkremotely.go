package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobtrend/internal/fetch"
	"github.com/amishk599/jobtrend/internal/model"
)

const (
	// WeWorkRemotelyURL is the programming category listing page.
	WeWorkRemotelyURL = "https://weworkremotely.com/categories/remote-programming-jobs"

	weWorkRemotelyOrigin   = "https://weworkremotely.com"
	weWorkRemotelyLocation = "Remote"

	// WeWorkRemotelyUserAgent is sent instead of a rotated browser identity.
	WeWorkRemotelyUserAgent = "Mozilla/5.0"
)

// WeWorkRemotelyAdapter scrapes the We Work Remotely category listing page.
type WeWorkRemotelyAdapter struct {
	url    string
	origin string
	client *fetch.Client
	logger *slog.Logger
}

// NewWeWorkRemotelyAdapter creates a new adapter. An empty url selects
// WeWorkRemotelyURL. The client should send WeWorkRemotelyUserAgent.
func NewWeWorkRemotelyAdapter(url string, client *fetch.Client, logger *slog.Logger) *WeWorkRemotelyAdapter {
	if url == "" {
		url = WeWorkRemotelyURL
	}
	return &WeWorkRemotelyAdapter{
		url:    url,
		origin: weWorkRemotelyOrigin,
		client: client,
		logger: logger,
	}
}

func (a *WeWorkRemotelyAdapter) Name() string { return model.SourceWeWorkRemotely }

// FetchJobs downloads the listing page and extracts one record per article in
// the jobs section. A page whose structure no longer matches yields no jobs.
func (a *WeWorkRemotelyAdapter) FetchJobs(ctx context.Context) ([]model.JobRecord, error) {
	a.logger.Info("fetching jobs", "source", a.Name())

	resp, err := a.client.Fetch(ctx, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("weworkremotely parse html: %w", err)
	}

	jobs := parseListing(doc, a.origin)
	if len(jobs) == 0 {
		a.logger.Warn("no job articles found on listing page", "source", a.Name(), "url", a.url)
	}

	a.logger.Info("scraped jobs", "source", a.Name(), "count", len(jobs))
	return jobs, nil
}

// CollectJobs is FetchJobs with failures logged and turned into an empty result.
func (a *WeWorkRemotelyAdapter) CollectJobs(ctx context.Context) []model.JobRecord {
	return collect(ctx, a.logger, a.Name(), a)
}

func parseListing(doc *goquery.Document, origin string) []model.JobRecord {
	jobs := []model.JobRecord{}
	doc.Find("section.jobs article").Each(func(_ int, article *goquery.Selection) {
		jobs = append(jobs, model.JobRecord{
			Title:    cleanText(article.Find("span.title").First().Text()),
			Company:  cleanText(article.Find("span.company").First().Text()),
			Location: weWorkRemotelyLocation,
			URL:      absoluteLink(article.Find("a").First(), origin),
			Source:   model.SourceWeWorkRemotely,
		})
	})
	return jobs
}

// absoluteLink prefixes a site-relative href with origin. Missing anchors or
// hrefs give "". An href that is already absolute is returned unchanged
// rather than prefixed a second time, which would produce an unusable URL.
func absoluteLink(a *goquery.Selection, origin string) string {
	if a.Length() == 0 {
		return ""
	}
	href, ok := a.Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return origin + href
}
