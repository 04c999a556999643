package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobtrend/internal/fetch"
	"github.com/amishk599/jobtrend/internal/model"
)

const wwrListingPage = `<!DOCTYPE html>
<html>
<body>
  <div id="category-2">
    <section class="jobs">
      <article>
        <ul>
          <li class="feature">
            <a href="/remote-jobs/initech-senior-go-developer">
              <span class="company">  Initech </span>
              <span class="title">Senior Go
                Developer</span>
              <span class="region company">Anywhere in the World</span>
            </a>
          </li>
        </ul>
      </article>
      <article>
        <a href="https://weworkremotely.com/remote-jobs/globex-sre">
          <span class="title">SRE</span>
        </a>
      </article>
      <article>
        <span class="title">Orphan Listing</span>
        <span class="company">Hooli</span>
      </article>
      <article>
        <a><span class="title">No Href</span></a>
      </article>
    </section>
  </div>
</body>
</html>`

func TestWeWorkRemotelyFetchJobs_Success(t *testing.T) {
	srv := serveBody("text/html", wwrListingPage)
	defer srv.Close()

	a := NewWeWorkRemotelyAdapter(srv.URL, newTestClient(), discardLogger())

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}

	want := model.JobRecord{
		Title:    "Senior Go Developer",
		Company:  "Initech",
		Location: "Remote",
		URL:      "https://weworkremotely.com/remote-jobs/initech-senior-go-developer",
		Source:   "We Work Remotely",
	}
	if jobs[0] != want {
		t.Errorf("job[0] = %+v, want %+v", jobs[0], want)
	}

	// Absolute hrefs are kept as-is; missing company is empty.
	if jobs[1].URL != "https://weworkremotely.com/remote-jobs/globex-sre" {
		t.Errorf("job[1].URL = %q", jobs[1].URL)
	}
	if jobs[1].Company != "" {
		t.Errorf("job[1].Company = %q, want empty", jobs[1].Company)
	}

	// No anchor, or an anchor without href, yields an empty URL.
	if jobs[2].URL != "" || jobs[2].Company != "Hooli" {
		t.Errorf("job[2] = %+v", jobs[2])
	}
	if jobs[3].URL != "" || jobs[3].Title != "No Href" {
		t.Errorf("job[3] = %+v", jobs[3])
	}

	for i, j := range jobs {
		if j.Description != "" || j.Experience != "" {
			t.Errorf("job[%d]: expected empty description and experience", i)
		}
		if j.Location != "Remote" {
			t.Errorf("job[%d]: location = %q, want Remote", i, j.Location)
		}
	}
}

func TestWeWorkRemotelyFetchJobs_NoArticles(t *testing.T) {
	srv := serveBody("text/html", `<html><body><section class="jobs"><ul></ul></section></body></html>`)
	defer srv.Close()

	a := NewWeWorkRemotelyAdapter(srv.URL, newTestClient(), discardLogger())

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs == nil || len(jobs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", jobs)
	}
}

func TestWeWorkRemotelyFetchJobs_LayoutChanged(t *testing.T) {
	srv := serveBody("text/html", `<html><body><main><div class="listing">nothing here</div></main></body></html>`)
	defer srv.Close()

	a := NewWeWorkRemotelyAdapter(srv.URL, newTestClient(), discardLogger())

	jobs := a.CollectJobs(context.Background())
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
}

func TestWeWorkRemotelyFetchJobs_EmptyBody(t *testing.T) {
	srv := serveBody("text/html", ``)
	defer srv.Close()

	a := NewWeWorkRemotelyAdapter(srv.URL, newTestClient(), discardLogger())

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
}

func TestWeWorkRemotelyCollectJobs_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewWeWorkRemotelyAdapter(srv.URL, newTestClient(), discardLogger())

	if jobs := a.CollectJobs(context.Background()); jobs == nil || len(jobs) != 0 {
		t.Fatalf("expected empty slice, got %v", jobs)
	}
}

func TestWeWorkRemotelyFetchJobs_SendsGenericUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	collector, err := New(SourceSpec{Kind: KindWeWorkRemotely, URL: srv.URL, Policy: fetch.Policy{Attempts: 1}}, nil, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	collector.CollectJobs(context.Background())

	if ua != WeWorkRemotelyUserAgent {
		t.Errorf("User-Agent = %q, want %q", ua, WeWorkRemotelyUserAgent)
	}
}

func TestAbsoluteLink(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"relative", `<a href="/remote-jobs/x">x</a>`, "https://weworkremotely.com/remote-jobs/x"},
		{"absolute kept", `<a href="https://weworkremotely.com/remote-jobs/y">y</a>`, "https://weworkremotely.com/remote-jobs/y"},
		{"blank href", `<a href="  ">z</a>`, ""},
		{"no href", `<a>z</a>`, ""},
		{"no anchor", `<span>z</span>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := absoluteLink(doc.Find("a").First(), weWorkRemotelyOrigin); got != tt.want {
				t.Errorf("absoluteLink = %q, want %q", got, tt.want)
			}
		})
	}
}
