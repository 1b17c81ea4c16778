package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/async"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/export"
	"github.com/joseph-ayodele/crewsheet/internal/ingest"
	"github.com/joseph-ayodele/crewsheet/internal/pipeline"
)

type batchRow struct {
	Path     string `json:"path"`
	RunID    string `json:"run_id,omitempty"`
	Status   string `json:"status"`
	Contacts int    `json:"contacts"`
	Error    string `json:"error,omitempty"`
}

type batchSummary struct {
	Stats ingest.DirStats `json:"stats"`
	Files []batchRow      `json:"files"`
}

func newBatchCommand(c *cli) *cobra.Command {
	var (
		flags      extractFlags
		workers    int
		out        string
		skipHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every supported document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.opts.remote != "" {
				return errors.New("batch runs locally; drop --server")
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			a, err := c.local(ctx, app.Options{WithoutStore: flags.noStore})
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				mu       sync.Mutex
				rows     []batchRow
				contacts []entity.Contact
			)
			collect := func(job async.Job, res pipeline.Outcome, err error) {
				row := batchRow{Path: job.Path, Status: "FAILED"}
				if err != nil {
					row.Error = err.Error()
				} else {
					run := entity.NewRun(res.Document.FileName, res.Document.MimeType, res.Result)
					row.RunID = res.RunID.String()
					row.Status = string(run.Status)
					row.Contacts = len(res.Result.Contacts)
					row.Error = res.Result.Error
				}
				mu.Lock()
				defer mu.Unlock()
				rows = append(rows, row)
				if err == nil {
					contacts = append(contacts, res.Result.Contacts...)
				}
			}

			queueOpts := append(async.FromConfig(c.cfg.Queue), async.WithWorkers(workers), async.WithResultHandler(collect))
			q := async.NewExtractionQueue(a.Processor, a.Logger, queueOpts...)
			ing := ingest.NewIngestor(q, flags.options(), a.Logger)
			_, stats, walkErr := ing.IngestDirectory(ctx, args[0], skipHidden)
			q.Shutdown(ctx)
			if walkErr != nil {
				return walkErr
			}

			sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
			if out != "" {
				if err := writeContactsFile(out, contacts); err != nil {
					return err
				}
			}
			return c.printBatch(batchSummary{Stats: stats, Files: rows}, out)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "also write all contacts to this .xlsx or .csv file")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dot files and directories")
	return cmd
}

func (c *cli) printBatch(s batchSummary, out string) error {
	if c.opts.output == "json" {
		return writeJSON(c.stdout, s)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tCONTACTS\tRUN\tERROR")
	for _, r := range s.Files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Path, r.Status, r.Contacts, r.RunID, r.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "\nmatched=%d queued=%d deduplicated=%d failed=%d\n",
		s.Stats.Matched, s.Stats.Queued, s.Stats.Deduplicated, s.Stats.Failed)
	if out != "" {
		fmt.Fprintf(c.stdout, "contacts written to %s\n", out)
	}
	return nil
}

func writeContactsFile(path string, contacts []entity.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isCSV(path) {
		return export.WriteCSV(f, contacts)
	}
	b, err := export.ContactsXLSX(contacts)
	if err != nil {
		return err
	}
	_, err = f.Write(b)
	return err
}
