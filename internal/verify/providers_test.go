package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/citewatch/citewatch/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		UserAgent: "citewatch-test",
		Mailto:    "dev@example.org",
		Timeout:   5 * time.Second,
	}
}

func TestCrossrefProvider_LookupDOI(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = fmt.Fprint(w, `{"message":{
			"DOI":"10.1000/xyz123",
			"title":["Attention Is All You Need"],
			"author":[{"given":"Ashish","family":"Vaswani"}],
			"issued":{"date-parts":[[2017,6]]},
			"container-title":["NeurIPS"],
			"URL":"https://doi.org/10.1000/xyz123"
		}}`)
	}))
	defer server.Close()

	p := NewCrossrefProvider(server.URL, testHTTPConfig())
	record, err := p.LookupDOI(context.Background(), "https://doi.org/10.1000/XYZ123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotPath != "/works/10.1000%2Fxyz123" && gotPath != "/works/10.1000/xyz123" {
		t.Errorf("Unexpected request path: %s", gotPath)
	}
	if !strings.Contains(gotUA, "mailto:dev@example.org") {
		t.Errorf("Expected polite-pool mailto in User-Agent, got %q", gotUA)
	}
	if record.DOI != "10.1000/xyz123" {
		t.Errorf("Expected normalized DOI, got %s", record.DOI)
	}
	if record.Title != "Attention Is All You Need" {
		t.Errorf("Unexpected title: %s", record.Title)
	}
	if len(record.Authors) != 1 || record.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Unexpected authors: %v", record.Authors)
	}
	if record.Year != 2017 {
		t.Errorf("Expected year 2017, got %d", record.Year)
	}
	if record.Venue != "NeurIPS" {
		t.Errorf("Unexpected venue: %s", record.Venue)
	}
}

func TestCrossrefProvider_LookupDOI_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewCrossrefProvider(server.URL, testHTTPConfig())
	_, err := p.LookupDOI(context.Background(), "10.9999/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCrossrefProvider_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = fmt.Fprint(w, `{"message":{"items":[
			{"DOI":"10.1/a","title":["First Result"],"issued":{"date-parts":[[2020]]}},
			{"DOI":"10.1/b","title":["Second Result"]}
		]}}`)
	}))
	defer server.Close()

	p := NewCrossrefProvider(server.URL, testHTTPConfig())
	records, err := p.Search(context.Background(), model.VerificationQuery{
		Title:   "deep learning",
		Authors: []string{"Hinton"},
		Year:    2020,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Title != "First Result" || records[0].Year != 2020 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if !strings.Contains(gotQuery, "query.bibliographic=deep+learning") {
		t.Errorf("Expected bibliographic query param, got %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "query.author=Hinton") {
		t.Errorf("Expected author query param, got %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "from-pub-date%3A2020-01-01") {
		t.Errorf("Expected year filter, got %s", gotQuery)
	}
}

func TestCrossrefProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewCrossrefProvider(server.URL, testHTTPConfig())
	_, err := p.Search(context.Background(), model.VerificationQuery{Title: "anything"})
	if err == nil {
		t.Fatal("Expected error for 503, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected status: 503") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenAlexProvider_LookupDOI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "doi:10.1000/abc") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, `{
			"doi":"https://doi.org/10.1000/abc",
			"display_name":"A Study of Things",
			"publication_year":2019,
			"authorships":[{"author":{"display_name":"Jane Roe"}},{"author":{"display_name":"John Doe"}}],
			"primary_location":{"source":{"display_name":"Nature"},"landing_page_url":"https://example.org/paper"}
		}`)
	}))
	defer server.Close()

	p := NewOpenAlexProvider(server.URL, testHTTPConfig())
	record, err := p.LookupDOI(context.Background(), "10.1000/abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.DOI != "10.1000/abc" {
		t.Errorf("Expected DOI stripped of resolver prefix, got %s", record.DOI)
	}
	if record.Title != "A Study of Things" {
		t.Errorf("Unexpected title: %s", record.Title)
	}
	if len(record.Authors) != 2 || record.Authors[0] != "Jane Roe" {
		t.Errorf("Unexpected authors: %v", record.Authors)
	}
	if record.Venue != "Nature" {
		t.Errorf("Unexpected venue: %s", record.Venue)
	}
	if record.URL != "https://example.org/paper" {
		t.Errorf("Unexpected URL: %s", record.URL)
	}
}

func TestOpenAlexProvider_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = fmt.Fprint(w, `{"results":[
			{"display_name":"Result One","publication_year":2021},
			{"display_name":"Result Two","publication_year":2021}
		]}`)
	}))
	defer server.Close()

	p := NewOpenAlexProvider(server.URL, testHTTPConfig())
	records, err := p.Search(context.Background(), model.VerificationQuery{Title: "graph neural networks", Year: 2021})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1].Title != "Result Two" {
		t.Errorf("Unexpected second record: %+v", records[1])
	}
	if !strings.Contains(gotQuery, "search=graph+neural+networks") {
		t.Errorf("Expected search param, got %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "publication_year%3A2021") {
		t.Errorf("Expected year filter, got %s", gotQuery)
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewCrossrefProvider("", testHTTPConfig()).Name(); got != "crossref" {
		t.Errorf("Expected crossref, got %s", got)
	}
	if got := NewOpenAlexProvider("", testHTTPConfig()).Name(); got != "openalex" {
		t.Errorf("Expected openalex, got %s", got)
	}
}
