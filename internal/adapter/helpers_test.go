package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/amishk599/jobtrend/internal/fetch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// testPolicy makes a single attempt with no pauses.
var testPolicy = fetch.Policy{Attempts: 1}

// newTestClient returns a fetch client that never sleeps.
func newTestClient(opts ...fetch.Option) *fetch.Client {
	opts = append([]fetch.Option{fetch.WithPolicy(testPolicy)}, opts...)
	return fetch.NewClient(discardLogger(), opts...)
}

// serveBody starts a test server that always answers with body.
func serveBody(contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
}
