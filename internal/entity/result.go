package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/crewsheet/constants"
)

// Metadata describes how a result was produced.
type Metadata struct {
	Strategy       constants.Strategy     `json:"strategy,omitempty"`
	Mode           constants.Mode         `json:"mode,omitempty"`
	DocumentType   constants.DocumentType `json:"document_type,omitempty"`
	Confidence     float64                `json:"confidence"`
	ProcessingTime time.Duration          `json:"processing_time"`
	TextLength     int                    `json:"text_length"`
	PatternsUsed   []string               `json:"patterns_used,omitempty"`
	AIUsed         bool                   `json:"ai_used"`
	AIError        string                 `json:"ai_error,omitempty"`
	Truncated      bool                   `json:"truncated,omitempty"`
	CacheHit       bool                   `json:"cache_hit,omitempty"`
	Rejected       int                    `json:"rejected,omitempty"`
	Notes          []string               `json:"notes,omitempty"`
}

// ExtractionResult is built once through NewSuccessResult or NewFailureResult.
type ExtractionResult struct {
	Success  bool      `json:"success"`
	Contacts []Contact `json:"contacts"`
	Metadata Metadata  `json:"metadata"`
	Error    string    `json:"error,omitempty"`
}

func NewSuccessResult(contacts []Contact, meta Metadata) *ExtractionResult {
	out := make([]Contact, len(contacts))
	copy(out, contacts)
	meta.PatternsUsed = slices.Clone(meta.PatternsUsed)
	meta.Notes = slices.Clone(meta.Notes)
	return &ExtractionResult{Success: true, Contacts: out, Metadata: meta}
}

func NewFailureResult(message string, meta Metadata) *ExtractionResult {
	meta.PatternsUsed = slices.Clone(meta.PatternsUsed)
	meta.Notes = slices.Clone(meta.Notes)
	return &ExtractionResult{Success: false, Contacts: []Contact{}, Metadata: meta, Error: message}
}

// Partial reports whether a success result was cut short.
func (r *ExtractionResult) Partial() bool {
	return r.Success && r.Metadata.Truncated
}
