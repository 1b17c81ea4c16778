package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/crewsheet/constants"
)

// ExtractionRun represents a stored extraction for data transfer between layers.
type ExtractionRun struct {
	ID           uuid.UUID              `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	FileName     string                 `json:"file_name,omitempty"`
	MimeType     string                 `json:"mime_type,omitempty"`
	Status       constants.RunStatus    `json:"status"`
	Strategy     constants.Strategy     `json:"strategy,omitempty"`
	Mode         constants.Mode         `json:"mode,omitempty"`
	DocumentType constants.DocumentType `json:"document_type,omitempty"`
	Confidence   float64                `json:"confidence"`
	ContactCount int                    `json:"contact_count"`
	TextLength   int                    `json:"text_length"`
	ProcessingMs int64                  `json:"processing_ms"`
	AIUsed       bool                   `json:"ai_used"`
	AIError      string                 `json:"ai_error,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// NewRun derives a run record from a finished result.
func NewRun(fileName, mimeType string, res *ExtractionResult) ExtractionRun {
	status := constants.RunStatusSucceeded
	switch {
	case !res.Success:
		status = constants.RunStatusFailed
	case res.Partial():
		status = constants.RunStatusPartial
	}
	return ExtractionRun{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		FileName:     fileName,
		MimeType:     mimeType,
		Status:       status,
		Strategy:     res.Metadata.Strategy,
		Mode:         res.Metadata.Mode,
		DocumentType: res.Metadata.DocumentType,
		Confidence:   res.Metadata.Confidence,
		ContactCount: len(res.Contacts),
		TextLength:   res.Metadata.TextLength,
		ProcessingMs: res.Metadata.ProcessingTime.Milliseconds(),
		AIUsed:       res.Metadata.AIUsed,
		AIError:      res.Metadata.AIError,
		ErrorMessage: res.Error,
	}
}
