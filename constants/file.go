package constants

import "strings"

type Format string

const (
	FormatText Format = "TEXT"
	FormatPDF  Format = "PDF"
	FormatXLSX Format = "XLSX"
	FormatHTML Format = "HTML"
)

// AllowedExtensions maps the document extensions we can turn into text.
var AllowedExtensions = map[string]Format{
	"txt":  FormatText,
	"text": FormatText,
	"csv":  FormatText,
	"tsv":  FormatText,
	"md":   FormatText,
	"pdf":  FormatPDF,
	"xlsx": FormatXLSX,
	"html": FormatHTML,
	"htm":  FormatHTML,
}

var mimeTypes = map[string]string{
	"txt":  "text/plain",
	"text": "text/plain",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"md":   "text/markdown",
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"html": "text/html",
	"htm":  "text/html",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns "" for unsupported extensions.
func MapExtToFormat(ext string) Format {
	return AllowedExtensions[NormalizeExt(ext)]
}

func MimeTypeForExt(ext string) string {
	if m, ok := mimeTypes[NormalizeExt(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}
