// Package extractor implements in-process place name extraction using the
// prose NLP library. No network calls are involved; the statistical model
// ships with the library.
package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// locationLabels are the named-entity labels treated as geographic places.
// GPE covers countries, cities and states; LOC covers physical features.
var locationLabels = map[string]struct{}{
	"GPE": {},
	"LOC": {},
}

// ProseExtractor implements ingest.PlaceExtractor with prose's NER model.
type ProseExtractor struct{}

// NewProse creates a new ProseExtractor.
func NewProse() *ProseExtractor {
	return &ProseExtractor{}
}

// ExtractPlaces returns the distinct place names mentioned in text,
// sorted alphabetically. Empty or whitespace-only input yields no names.
func (e *ProseExtractor) ExtractPlaces(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, ent := range doc.Entities() {
		if _, ok := locationLabels[ent.Label]; !ok {
			continue
		}
		name := strings.TrimSpace(ent.Text)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
