package server

import "github.com/joseph-ayodele/crewsheet/internal/entity"

type ExtractTextRequest struct {
	Text     string         `json:"text"`
	FileName string         `json:"file_name,omitempty"`
	Options  entity.Options `json:"options"`
}

// ExtractFileRequest carries a whole document; Content is base64 on the wire.
type ExtractFileRequest struct {
	FileName string         `json:"file_name"`
	Content  []byte         `json:"content"`
	Options  entity.Options `json:"options"`
}

type ExtractResponse struct {
	RunID  string                   `json:"run_id"`
	Result *entity.ExtractionResult `json:"result"`
}

type ClassifyRequest struct {
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
}

type ClassifyResponse struct {
	Analysis entity.DocumentAnalysis `json:"analysis"`
}

type RunRequest struct {
	ID string `json:"id"`
}

type RunResponse struct {
	Run      entity.ExtractionRun `json:"run"`
	Contacts []entity.Contact     `json:"contacts"`
}

type ListRunsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListRunsResponse struct {
	Runs []entity.ExtractionRun `json:"runs"`
}

type ExportRunResponse struct {
	FileName string `json:"file_name"`
	XLSX     []byte `json:"xlsx"`
}
