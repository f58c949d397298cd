package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

// CrossrefProvider queries the Crossref REST API
type CrossrefProvider struct {
	cfg clientConfig
}

// NewCrossrefProvider creates a Crossref client. mailto identifies the
// caller for Crossref's polite pool.
func NewCrossrefProvider(baseURL string, httpCfg model.HTTPConfig) *CrossrefProvider {
	if baseURL == "" {
		baseURL = "https://api.crossref.org"
	}
	return &CrossrefProvider{cfg: newClientConfig(baseURL, httpCfg)}
}

// Name returns the provider name
func (p *CrossrefProvider) Name() string {
	return "crossref"
}

type crossrefWork struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
	ContainerTitle []string `json:"container-title"`
	URL            string   `json:"URL"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

// LookupDOI resolves a DOI via the works resource path
func (p *CrossrefProvider) LookupDOI(ctx context.Context, doi string) (*model.BibRecord, error) {
	u := fmt.Sprintf("%s/works/%s", p.cfg.baseURL, url.PathEscape(NormalizeDOI(doi)))

	body, err := p.cfg.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp crossrefWorkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	record := crossrefToRecord(resp.Message)
	if record.DOI == "" {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Search queries works by bibliographic text with an optional year filter
func (p *CrossrefProvider) Search(ctx context.Context, query model.VerificationQuery) ([]model.BibRecord, error) {
	params := url.Values{}
	params.Set("rows", fmt.Sprintf("%d", searchRows))
	if query.Title != "" {
		params.Set("query.bibliographic", query.Title)
	}
	if len(query.Authors) > 0 {
		params.Set("query.author", strings.Join(query.Authors, " "))
	}
	if query.Year != 0 {
		params.Set("filter", fmt.Sprintf("from-pub-date:%d-01-01,until-pub-date:%d-12-31", query.Year, query.Year))
	}

	body, err := p.cfg.getJSON(ctx, p.cfg.baseURL+"/works?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp crossrefSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]model.BibRecord, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		records = append(records, crossrefToRecord(item))
	}
	return records, nil
}

func crossrefToRecord(w crossrefWork) model.BibRecord {
	record := model.BibRecord{
		DOI: NormalizeDOI(w.DOI),
		URL: w.URL,
	}

	if len(w.Title) > 0 {
		record.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		record.Venue = w.ContainerTitle[0]
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			record.Authors = append(record.Authors, name)
		}
	}
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		record.Year = w.Issued.DateParts[0][0]
	}

	return record
}
