package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	runsTable     = "extraction_runs"
	contactsTable = "run_contacts"

	defaultListLimit = 50
	maxListLimit     = 500
)

var runColumns = []string{
	"id", "created_at", "file_name", "mime_type", "status", "strategy", "mode",
	"document_type", "confidence", "contact_count", "text_length", "processing_ms",
	"ai_used", "ai_error", "error_message",
}

var contactColumns = []string{
	"run_id", "position", "name", "role", "email", "phone", "company", "section",
	"confidence", "source", "line_number",
}

// ExtractionRunRepository stores finished extractions and their contacts.
type ExtractionRunRepository interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run entity.ExtractionRun, contacts []entity.Contact) error
	GetRun(ctx context.Context, id uuid.UUID) (entity.ExtractionRun, error)
	ListRuns(ctx context.Context, limit int) ([]entity.ExtractionRun, error)
	ListContacts(ctx context.Context, runID uuid.UUID) ([]entity.Contact, error)
}

type runRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewExtractionRunRepository(drv *entsql.Driver, logger *slog.Logger) ExtractionRunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{drv: drv, logger: logger}
}

func (r *runRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

// columnTypes maps portable names onto dialect column types.
func (r *runRepository) columnTypes() map[string]string {
	if r.drv.Dialect() == dialect.Postgres {
		return map[string]string{"text": "TEXT", "float": "DOUBLE PRECISION", "int": "BIGINT", "bool": "BOOLEAN"}
	}
	return map[string]string{"text": "TEXT", "float": "REAL", "int": "INTEGER", "bool": "BOOLEAN"}
}

// Migrate creates the tables when missing.
func (r *runRepository) Migrate(ctx context.Context) error {
	t := r.columnTypes()
	col := func(name, typ string) *entsql.ColumnBuilder {
		return entsql.Column(name).Type(t[typ]).Attr("NOT NULL")
	}
	b := r.builder()

	runs := b.CreateTable(runsTable).IfNotExists().
		Columns(
			col("id", "text"),
			col("created_at", "int"),
			col("file_name", "text"),
			col("mime_type", "text"),
			col("status", "text"),
			col("strategy", "text"),
			col("mode", "text"),
			col("document_type", "text"),
			col("confidence", "float"),
			col("contact_count", "int"),
			col("text_length", "int"),
			col("processing_ms", "int"),
			col("ai_used", "bool"),
			col("ai_error", "text"),
			col("error_message", "text"),
		).
		PrimaryKey("id")

	contacts := b.CreateTable(contactsTable).IfNotExists().
		Columns(
			col("run_id", "text"),
			col("position", "int"),
			col("name", "text"),
			col("role", "text"),
			col("email", "text"),
			col("phone", "text"),
			col("company", "text"),
			col("section", "text"),
			col("confidence", "float"),
			col("source", "text"),
			col("line_number", "int"),
		).
		PrimaryKey("run_id", "position").
		ForeignKeys(entsql.ForeignKey().Columns("run_id").Reference(entsql.Reference().Table(runsTable).Columns("id")).OnDelete("CASCADE"))

	index := b.CreateIndex("idx_extraction_runs_created_at").IfNotExists().Table(runsTable).Columns("created_at")

	for _, q := range []entsql.Querier{runs, contacts, index} {
		query, args := q.Query()
		if err := r.drv.Exec(ctx, query, args, nil); err != nil {
			r.logger.Error("repository.migrate.failed", "err", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	r.logger.Debug("repository.migrate.ok")
	return nil
}

// SaveRun writes the run and its contacts in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, run entity.ExtractionRun, contacts []entity.Contact) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}

	b := r.builder()
	query, args := b.Insert(runsTable).Columns(runColumns...).Values(
		run.ID.String(), run.CreatedAt.UnixNano(), run.FileName, run.MimeType, string(run.Status),
		string(run.Strategy), string(run.Mode), string(run.DocumentType), run.Confidence,
		run.ContactCount, run.TextLength, run.ProcessingMs, run.AIUsed, run.AIError, run.ErrorMessage,
	).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		_ = tx.Rollback()
		r.logger.Error("repository.run.save_failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}

	if len(contacts) > 0 {
		ins := b.Insert(contactsTable).Columns(contactColumns...)
		for i, c := range contacts {
			ins.Values(run.ID.String(), i, c.Name, c.Role, c.Email, c.Phone, c.Company, c.Section,
				c.Confidence, string(c.Source), c.LineNumber)
		}
		query, args = ins.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			_ = tx.Rollback()
			r.logger.Error("repository.run.save_failed", "run_id", run.ID, "err", err)
			return fmt.Errorf("%w: insert contacts: %v", common.ErrDatabase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.run.saved", "run_id", run.ID, "status", run.Status, "contacts", len(contacts))
	return nil
}

func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (entity.ExtractionRun, error) {
	query, args := r.builder().Select(runColumns...).
		From(entsql.Table(runsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	runs, err := r.queryRuns(ctx, query, args)
	if err != nil {
		return entity.ExtractionRun{}, err
	}
	if len(runs) == 0 {
		return entity.ExtractionRun{}, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return runs[0], nil
}

// ListRuns returns the newest runs first.
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	query, args := r.builder().Select(runColumns...).
		From(entsql.Table(runsTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id")).
		Limit(limit).
		Query()
	return r.queryRuns(ctx, query, args)
}

// ListContacts returns a run's contacts in their stored output order.
func (r *runRepository) ListContacts(ctx context.Context, runID uuid.UUID) ([]entity.Contact, error) {
	query, args := r.builder().Select(contactColumns...).
		From(entsql.Table(contactsTable)).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("position").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: list contacts: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []entity.Contact{}
	for rows.Next() {
		var (
			runIDText string
			position  int
			source    string
			c         entity.Contact
		)
		if err := rows.Scan(&runIDText, &position, &c.Name, &c.Role, &c.Email, &c.Phone,
			&c.Company, &c.Section, &c.Confidence, &source, &c.LineNumber); err != nil {
			return nil, fmt.Errorf("%w: scan contact: %v", common.ErrDatabase, err)
		}
		c.Source = constants.Source(source)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *runRepository) queryRuns(ctx context.Context, query string, args []any) ([]entity.ExtractionRun, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: query runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []entity.ExtractionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanRun(rows entsql.Rows) (entity.ExtractionRun, error) {
	var (
		run                             entity.ExtractionRun
		id                              string
		createdAt                       int64
		status, strategy, mode, docType string
	)
	err := rows.Scan(&id, &createdAt, &run.FileName, &run.MimeType, &status, &strategy, &mode,
		&docType, &run.Confidence, &run.ContactCount, &run.TextLength, &run.ProcessingMs,
		&run.AIUsed, &run.AIError, &run.ErrorMessage)
	if err != nil {
		return run, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return run, fmt.Errorf("%w: bad run id %q", common.ErrDatabase, id)
	}
	run.ID = parsed
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	run.Status = constants.RunStatus(status)
	run.Strategy = constants.Strategy(strategy)
	run.Mode = constants.Mode(mode)
	run.DocumentType = constants.DocumentType(docType)
	return run, nil
}

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
