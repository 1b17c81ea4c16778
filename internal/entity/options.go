package entity

import (
	"time"

	"github.com/joseph-ayodele/crewsheet/constants"
)

const (
	DefaultMaxContacts       = 1000
	DefaultMaxProcessingTime = 30 * time.Second
)

// Options tune a single extraction call.
type Options struct {
	MaxContacts       int                `json:"max_contacts,omitempty" yaml:"max_contacts"`
	MaxProcessingTime time.Duration      `json:"max_processing_time,omitempty" yaml:"max_processing_time"`
	PreferredStrategy constants.Strategy `json:"preferred_strategy,omitempty" yaml:"preferred_strategy"`
	RolePreferences   []string           `json:"role_preferences,omitempty" yaml:"role_preferences"`
	DisableAI         bool               `json:"disable_ai,omitempty" yaml:"disable_ai"`

	// hints from the document source; used for classification only
	FileName string `json:"file_name,omitempty" yaml:"-"`
	MimeType string `json:"mime_type,omitempty" yaml:"-"`
}

// WithDefaults returns a copy with zero values replaced.
func (o Options) WithDefaults() Options {
	if o.MaxContacts <= 0 {
		o.MaxContacts = DefaultMaxContacts
	}
	if o.MaxProcessingTime <= 0 {
		o.MaxProcessingTime = DefaultMaxProcessingTime
	}
	return o
}
