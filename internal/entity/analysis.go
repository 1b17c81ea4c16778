package entity

import "github.com/joseph-ayodele/crewsheet/constants"

// DocumentAnalysis is computed once per document and only read afterwards.
type DocumentAnalysis struct {
	Type                  constants.DocumentType `json:"type"`
	Confidence            float64                `json:"confidence"`
	Complexity            constants.Complexity   `json:"complexity"`
	Structure             constants.Structure    `json:"structure"`
	EstimatedContactCount int                    `json:"estimated_contact_count"`
	Sections              []string               `json:"sections,omitempty"`
	Scores                map[string]float64     `json:"scores,omitempty"`
}

// StrategyDescriptor describes one candidate strategy for ranking.
type StrategyDescriptor struct {
	Name       constants.Strategy `json:"name"`
	Confidence float64            `json:"confidence"`
	Available  bool               `json:"available"`
	Cost       constants.Cost     `json:"cost"`
	Speed      constants.Speed    `json:"speed"`
}
