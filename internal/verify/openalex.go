package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/citewatch/citewatch/internal/model"
)

// OpenAlexProvider queries the OpenAlex works API
type OpenAlexProvider struct {
	cfg clientConfig
}

// NewOpenAlexProvider creates an OpenAlex client
func NewOpenAlexProvider(baseURL string, httpCfg model.HTTPConfig) *OpenAlexProvider {
	if baseURL == "" {
		baseURL = "https://api.openalex.org"
	}
	return &OpenAlexProvider{cfg: newClientConfig(baseURL, httpCfg)}
}

// Name returns the provider name
func (p *OpenAlexProvider) Name() string {
	return "openalex"
}

type openAlexWork struct {
	DOI             string `json:"doi"` // Full resolver URL form
	DisplayName     string `json:"display_name"`
	PublicationYear int    `json:"publication_year"`
	Authorships     []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
		LandingPageURL string `json:"landing_page_url"`
	} `json:"primary_location"`
}

type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

// LookupDOI resolves a DOI via the works/doi: resource path
func (p *OpenAlexProvider) LookupDOI(ctx context.Context, doi string) (*model.BibRecord, error) {
	u := fmt.Sprintf("%s/works/doi:%s", p.cfg.baseURL, url.PathEscape(NormalizeDOI(doi)))

	body, err := p.cfg.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var work openAlexWork
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	record := openAlexToRecord(work)
	if record.DOI == "" && record.Title == "" {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Search queries works by full-text search with an optional year filter
func (p *OpenAlexProvider) Search(ctx context.Context, query model.VerificationQuery) ([]model.BibRecord, error) {
	params := url.Values{}
	params.Set("per-page", fmt.Sprintf("%d", searchRows))
	if query.Title != "" {
		params.Set("search", query.Title)
	}
	if query.Year != 0 {
		params.Set("filter", fmt.Sprintf("publication_year:%d", query.Year))
	}

	body, err := p.cfg.getJSON(ctx, p.cfg.baseURL+"/works?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp openAlexSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]model.BibRecord, 0, len(resp.Results))
	for _, work := range resp.Results {
		records = append(records, openAlexToRecord(work))
	}
	return records, nil
}

func openAlexToRecord(w openAlexWork) model.BibRecord {
	record := model.BibRecord{
		DOI:   NormalizeDOI(w.DOI),
		Title: w.DisplayName,
		Year:  w.PublicationYear,
		Venue: w.PrimaryLocation.Source.DisplayName,
		URL:   w.PrimaryLocation.LandingPageURL,
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			record.Authors = append(record.Authors, a.Author.DisplayName)
		}
	}
	return record
}
