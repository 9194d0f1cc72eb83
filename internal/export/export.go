// Package export serializes a ranked run into the results document and
// delivers it to a file or a Redis list.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/pipeline"
)

// Application is written into the metadata of every document.
const Application = "resume-selector"

//go:embed schema.json
var schema string

// Metadata describes the run a document was produced by.
type Metadata struct {
	TotalCandidates int    `json:"total_candidates"`
	ModelUsed       string `json:"model_used"`
	Provider        string `json:"provider,omitempty"`
	Timestamp       string `json:"timestamp"`
	Application     string `json:"application"`
	RunID           string `json:"run_id"`
}

// Document is the exported results file.
type Document struct {
	Metadata Metadata           `json:"metadata"`
	Results  []candidate.Report `json:"results"`
}

// FromResult builds the document for result, stamped with now in UTC.
func FromResult(result *pipeline.Result, now time.Time) Document {
	reports := make([]candidate.Report, len(result.Reports))
	copy(reports, result.Reports)

	return Document{
		Metadata: Metadata{
			TotalCandidates: len(reports),
			ModelUsed:       result.Model,
			Provider:        result.Provider,
			Timestamp:       now.UTC().Format(time.RFC3339),
			Application:     Application,
			RunID:           result.RunID,
		},
		Results: reports,
	}
}

// Marshal encodes doc as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	if doc.Results == nil {
		doc.Results = []candidate.Report{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode results document: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a results document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode results document: %w", err)
	}
	return doc, nil
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "results document is invalid: " + strings.Join(e.Problems, "; ")
}

// Validate checks encoded document data against the results schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate results document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Problems: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}
