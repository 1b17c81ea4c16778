package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/docsource"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Extractor is the contact extraction core.
type Extractor interface {
	Extract(ctx context.Context, text string, opts entity.Options) *entity.ExtractionResult
}

// Store persists finished runs.
type Store interface {
	SaveRun(ctx context.Context, run entity.ExtractionRun, contacts []entity.Contact) error
}

// Outcome is what one processed document produced.
type Outcome struct {
	RunID    uuid.UUID
	Document docsource.Document
	Result   *entity.ExtractionResult
}

// Processor coordinates document loading, extraction, and storage of the run.
type Processor struct {
	logger    *slog.Logger
	loader    *docsource.Loader
	extractor Extractor
	store     Store
}

// NewProcessor wires the stages. store may be nil, in which case runs are
// not persisted.
func NewProcessor(logger *slog.Logger, loader *docsource.Loader, extractor Extractor, store Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = docsource.NewLoader(docsource.Config{}, logger)
	}
	return &Processor{logger: logger, loader: loader, extractor: extractor, store: store}
}

// ProcessFile loads path, extracts contacts and stores the run.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts entity.Options) (Outcome, error) {
	doc, err := p.loader.Load(ctx, path)
	if err != nil {
		p.logger.Error("processor.load.failed", "path", path, "err", err)
		return Outcome{Document: doc}, err
	}
	return p.process(ctx, doc, opts)
}

// ProcessBytes is ProcessFile for an uploaded file.
func (p *Processor) ProcessBytes(ctx context.Context, name string, data []byte, opts entity.Options) (Outcome, error) {
	doc, err := p.loader.LoadBytes(ctx, name, data)
	if err != nil {
		p.logger.Error("processor.load.failed", "file", name, "err", err)
		return Outcome{Document: doc}, err
	}
	return p.process(ctx, doc, opts)
}

// ProcessText runs extraction over text that is already plain.
func (p *Processor) ProcessText(ctx context.Context, name, text string, opts entity.Options) (Outcome, error) {
	return p.process(ctx, docsource.Document{Text: text, FileName: name, MimeType: "text/plain", Method: "text"}, opts)
}

func (p *Processor) process(ctx context.Context, doc docsource.Document, opts entity.Options) (Outcome, error) {
	if opts.FileName == "" {
		opts.FileName = doc.FileName
	}
	if opts.MimeType == "" {
		opts.MimeType = doc.MimeType
	}

	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	logger := common.LoggerFrom(ctx, p.logger)

	res := p.extractor.Extract(ctx, doc.Text, opts)
	run := entity.NewRun(doc.FileName, doc.MimeType, res)
	run.ID = runID
	out := Outcome{RunID: runID, Document: doc, Result: res}

	if p.store != nil {
		if err := p.store.SaveRun(ctx, run, res.Contacts); err != nil {
			logger.Error("processor.store.failed", "err", err)
			return out, err
		}
	}
	logger.Info("processor.done",
		"file", doc.FileName,
		"status", run.Status,
		"contacts", len(res.Contacts),
		"strategy", res.Metadata.Strategy,
	)
	return out, nil
}
