package docsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
)

const defaultMaxBytes = 20 << 20

type Config struct {
	// Pdftotext is used when the embedded PDF reader finds no text. Empty disables it.
	Pdftotext string
	MaxPages  int   // 0 = no limit
	MaxBytes  int64 // default 20 MiB
}

// Document is a source file reduced to plain text.
type Document struct {
	Text     string
	FileName string
	MimeType string
	Format   constants.Format
	Pages    int
	Method   string // "text" | "pdf-text" | "pdftotext" | "xlsx" | "html"
	Duration time.Duration
	Warnings []string
}

// Loader turns supported files into text. Format is chosen by extension.
type Loader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &Loader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	return constants.MapExtToFormat(filepath.Ext(path)) != ""
}

// Load reads path and converts it to text.
func (l *Loader) Load(ctx context.Context, path string) (Document, error) {
	if !Supported(path) {
		return Document{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, l.cfg.MaxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > l.cfg.MaxBytes {
		return Document{}, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrInvalidInput, path, l.cfg.MaxBytes)
	}
	doc, err := l.LoadBytes(ctx, filepath.Base(path), data)
	if doc.Format == constants.FormatPDF && l.cfg.Pdftotext != "" && (err != nil || strings.TrimSpace(doc.Text) == "") {
		if err != nil {
			doc.Warnings = append(doc.Warnings, err.Error())
		}
		return l.pdftotext(ctx, path, doc)
	}
	return doc, err
}

// LoadBytes converts an in-memory file; name supplies the extension.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(name))
	doc := Document{
		FileName: name,
		MimeType: constants.MimeTypeForExt(ext),
		Format:   constants.MapExtToFormat(ext),
	}
	l.logger.Debug("docsource.load.start", "file", name, "ext", ext, "bytes", len(data))

	var err error
	switch doc.Format {
	case constants.FormatText:
		doc.Text, err = decodeText(data)
		doc.Method, doc.Pages = "text", 1
	case constants.FormatPDF:
		doc.Text, doc.Pages, doc.Warnings, err = l.pdfText(ctx, data)
		doc.Method = "pdf-text"
	case constants.FormatXLSX:
		doc.Text, doc.Pages, err = xlsxText(data)
		doc.Method = "xlsx"
	case constants.FormatHTML:
		doc.Text, err = htmlText(data)
		doc.Method, doc.Pages = "html", 1
	default:
		l.logger.Error("unsupported document extension", "extension", ext)
		return doc, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	doc.Duration = time.Since(start)
	if err != nil {
		l.logger.Warn("docsource.load.failed", "file", name, "method", doc.Method, "err", err)
		return doc, fmt.Errorf("load %s: %w", name, err)
	}
	l.logger.Debug("docsource.load.ok", "file", name, "method", doc.Method, "pages", doc.Pages, "chars", len(doc.Text))
	return doc, nil
}

func (l *Loader) pdftotext(ctx context.Context, path string, doc Document) (Document, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		doc.Warnings = append(doc.Warnings, string(bytes.TrimSpace(errb)))
		return doc, fmt.Errorf("pdftotext: %w", err)
	}
	doc.Text = string(out)
	// form feed separates pages
	doc.Pages = 1 + bytes.Count(out, []byte("\f"))
	doc.Method = "pdftotext"
	return doc, nil
}
