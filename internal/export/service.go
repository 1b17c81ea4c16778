package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/repository"
)

const sheet = "Contacts"

var headers = []string{"Name", "Role", "Email", "Phone", "Company", "Section", "Confidence", "Source", "Line"}

// Service produces contact exports for stored runs.
type Service struct {
	runs   repository.ExtractionRunRepository
	logger *slog.Logger
}

func NewService(runs repository.ExtractionRunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ExportRunXLSX returns the contacts of a stored run as an XLSX workbook.
func (s *Service) ExportRunXLSX(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	start := time.Now()
	if _, err := s.runs.GetRun(ctx, runID); err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	contacts, err := s.runs.ListContacts(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	b, err := ContactsXLSX(contacts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"run_id", runID.String(),
		"rows", len(contacts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// ContactsXLSX renders contacts on one sheet with a bold, frozen header row.
func ContactsXLSX(contacts []entity.Contact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	confFmt := "0.00"
	confStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &confFmt})
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, c := range contacts {
		row := i + 2
		values := []any{c.Name, c.Role, c.Email, c.Phone, c.Company, c.Section, c.Confidence, string(c.Source), lineValue(c.LineNumber)}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", row, err)
		}
	}
	if len(contacts) > 0 {
		top, _ := excelize.CoordinatesToCellName(7, 2)
		bottom, _ := excelize.CoordinatesToCellName(7, len(contacts)+1)
		_ = f.SetCellStyle(sheet, top, bottom, confStyle)
	}

	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	_ = f.SetColWidth(sheet, "A", "A", 26) // name
	_ = f.SetColWidth(sheet, "B", "B", 22) // role
	_ = f.SetColWidth(sheet, "C", "C", 32) // email
	_ = f.SetColWidth(sheet, "D", "D", 18) // phone
	_ = f.SetColWidth(sheet, "E", "F", 22)
	_ = f.SetColWidth(sheet, "G", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes contacts with the same columns as the XLSX export.
func WriteCSV(w io.Writer, contacts []entity.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, c := range contacts {
		line := ""
		if c.LineNumber > 0 {
			line = strconv.Itoa(c.LineNumber)
		}
		rec := []string{c.Name, c.Role, c.Email, c.Phone, c.Company, c.Section,
			strconv.FormatFloat(c.Confidence, 'f', 3, 64), string(c.Source), line}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func lineValue(n int) any {
	if n <= 0 {
		return ""
	}
	return n
}
