package fetch

import (
	"math/rand"
	"net/http"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.5845.111 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:113.0) Gecko/20100101 Firefox/113.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
}

const acceptLanguage = "en-US,en;q=0.9"

// HeaderFunc produces the request headers for one attempt.
type HeaderFunc func() http.Header

// RandomHeaders picks a browser user agent uniformly at random and pairs it
// with a fixed language preference.
func RandomHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	h.Set("Accept-Language", acceptLanguage)
	return h
}

// FixedUserAgent returns a HeaderFunc that always sends ua.
func FixedUserAgent(ua string) HeaderFunc {
	return func() http.Header {
		h := make(http.Header)
		h.Set("User-Agent", ua)
		return h
	}
}
