package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/citewatch/citewatch/internal/model"
)

// SidecarStore persists each document's citations in a JSON sidecar file
// next to the document. It is the source of truth for registered
// citations; source-claim links ride in the same file.
type SidecarStore struct {
	mu sync.Mutex
}

// NewSidecarStore creates a sidecar store
func NewSidecarStore() *SidecarStore {
	return &SidecarStore{}
}

// SidecarPath returns the sidecar file path for a document
func SidecarPath(documentPath string) string {
	return documentPath + ".citations.json"
}

// LoadCitations loads the citation file for a document. A missing
// sidecar yields an empty file, not an error.
func (s *SidecarStore) LoadCitations(documentPath string) (*model.CitationFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(documentPath)
}

// SaveCitations writes the citation file atomically
func (s *SidecarStore) SaveCitations(documentPath string, file *model.CitationFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(documentPath, file)
}

// AddCitation registers a citation, assigning the next display number if
// none is set. Numbers are monotonically assigned and never reused.
func (s *SidecarStore) AddCitation(documentPath string, citation model.Citation) (*model.Citation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(documentPath)
	if err != nil {
		return nil, err
	}

	if existing := file.FindByURL(citation.URL); existing != nil {
		return existing, nil
	}

	if citation.Number == 0 {
		citation.Number = file.NextNumber
	}
	if citation.Number >= file.NextNumber {
		file.NextNumber = citation.Number + 1
	}

	file.Citations = append(file.Citations, citation)
	if err := s.save(documentPath, file); err != nil {
		return nil, err
	}
	return &file.Citations[len(file.Citations)-1], nil
}

// AddUsage appends a usage to the citation with the given ID
func (s *SidecarStore) AddUsage(documentPath, citationID string, usage model.Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(documentPath)
	if err != nil {
		return err
	}

	citation := file.FindByID(citationID)
	if citation == nil {
		return fmt.Errorf("citation %q not found", citationID)
	}

	citation.Usages = append(citation.Usages, usage)
	return s.save(documentPath, file)
}

func (s *SidecarStore) load(documentPath string) (*model.CitationFile, error) {
	data, err := os.ReadFile(SidecarPath(documentPath))
	if err != nil {
		if os.IsNotExist(err) {
			return &model.CitationFile{DocumentPath: documentPath, NextNumber: 1}, nil
		}
		return nil, fmt.Errorf("read citations: %w", err)
	}

	var file model.CitationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse citations: %w", err)
	}
	if file.DocumentPath == "" {
		file.DocumentPath = documentPath
	}
	if file.NextNumber == 0 {
		file.NextNumber = len(file.Citations) + 1
	}
	return &file, nil
}

func (s *SidecarStore) save(documentPath string, file *model.CitationFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	path := SidecarPath(documentPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write citations: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace citations: %w", err)
	}
	return nil
}
