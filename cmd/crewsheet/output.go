package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/export"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printResult(resp server.ExtractResponse) error {
	switch c.opts.output {
	case "json":
		return writeJSON(c.stdout, resp)
	case "csv":
		return export.WriteCSV(c.stdout, resp.Result.Contacts)
	}

	res := resp.Result
	md := res.Metadata
	fmt.Fprintf(c.stdout, "run %s  %s  strategy=%s mode=%s confidence=%.2f  %d contacts in %s\n",
		resp.RunID, md.DocumentType, md.Strategy, md.Mode, md.Confidence, len(res.Contacts), md.ProcessingTime)
	if md.AIError != "" {
		fmt.Fprintf(c.stdout, "ai error: %s\n", md.AIError)
	}
	for _, n := range md.Notes {
		fmt.Fprintf(c.stdout, "note: %s\n", n)
	}
	if len(res.Contacts) > 0 {
		fmt.Fprintln(c.stdout)
		return writeContactTable(c.stdout, res.Contacts)
	}
	return nil
}

func writeContactTable(w io.Writer, contacts []entity.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROLE\tPHONE\tEMAIL\tCOMPANY\tCONF\tSOURCE")
	for _, ct := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ct.Name, ct.Role, ct.Phone, ct.Email, ct.Company,
			strconv.FormatFloat(ct.Confidence, 'f', 2, 64), ct.Source)
	}
	return tw.Flush()
}

func writeRunTable(w io.Writer, runs []entity.ExtractionRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFILE\tSTATUS\tSTRATEGY\tCONTACTS\tAI")
	for _, r := range runs {
		ai := ""
		if r.AIUsed {
			ai = "yes"
		}
		if r.AIError != "" {
			ai = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(r.FileName, 40),
			r.Status, r.Strategy, r.ContactCount, ai)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
