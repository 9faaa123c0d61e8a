// Package estest fakes an Elasticsearch cluster at the HTTP transport level.
package estest

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// Response is a canned reply.
type Response struct {
	Status int
	Body   string
}

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Transport answers requests by "METHOD /path" and records every request.
// Unrouted requests get 404 with an index_not_found_exception body.
type Transport struct {
	mu       sync.Mutex
	routes   map[string]Response
	requests []Request
}

// NewTransport returns a transport with the given routes.
func NewTransport(routes map[string]Response) *Transport {
	t := &Transport{routes: make(map[string]Response, len(routes))}
	for k, v := range routes {
		t.routes[k] = v
	}
	return t
}

// Handle adds or replaces a route.
func (t *Transport) Handle(route string, res Response) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[route] = res
}

// Requests returns the recorded requests.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.requests...)
}

// Routes returns the "METHOD /path" of each recorded request, in order.
func (t *Transport) Routes() []string {
	reqs := t.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(b)
	}

	route := req.Method + " " + req.URL.Path

	t.mu.Lock()
	t.requests = append(t.requests, Request{Method: req.Method, Path: req.URL.Path, Query: req.URL.RawQuery, Body: body})
	res, ok := t.routes[route]
	t.mu.Unlock()

	if !ok {
		res = Response{
			Status: http.StatusNotFound,
			Body:   `{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`,
		}
	}
	if res.Status == 0 {
		res.Status = http.StatusOK
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("X-Elastic-Product", "Elasticsearch")

	return &http.Response{
		StatusCode: res.Status,
		Status:     http.StatusText(res.Status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(res.Body)),
		Request:    req,
	}, nil
}
