package constants

type DocumentType string

const (
	DocCallSheet        DocumentType = "call_sheet"
	DocContactDirectory DocumentType = "contact_directory"
	DocSchedule         DocumentType = "schedule"
	DocCrewList         DocumentType = "crew_list"
	DocTalentSheet      DocumentType = "talent_sheet"
	DocUnknown          DocumentType = "unknown"
)

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

type Structure string

const (
	StructureTabular      Structure = "tabular"
	StructureStructured   Structure = "structured"
	StructureCSVLike      Structure = "csv-like"
	StructureUnstructured Structure = "unstructured"
)
