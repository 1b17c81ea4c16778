package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/internal/app"
)

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func newExportCommand(c *cli) *cobra.Command {
	var (
		flags extractFlags
		out   string
		runID string
	)
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write contacts to an XLSX or CSV file",
		Long:  "Extracts the given document, or loads a stored run with --run, and writes its contacts to --out.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if (runID == "") == (len(args) == 0) {
				return errors.New("pass either a file or --run")
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			if len(args) == 1 {
				resp, err := c.extract(ctx, args[0], flags)
				if err != nil {
					return err
				}
				if !resp.Result.Success {
					return fmt.Errorf("extraction failed: %s", resp.Result.Error)
				}
				if err := writeContactsFile(out, resp.Result.Contacts); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "%d contacts written to %s\n", len(resp.Result.Contacts), out)
				return nil
			}

			id, err := uuid.Parse(runID)
			if err != nil {
				return fmt.Errorf("--run must be a UUID: %w", err)
			}
			if isCSV(out) {
				contacts, err := c.runContacts(ctx, id)
				if err != nil {
					return err
				}
				return writeContactsFile(out, contacts)
			}

			var xlsx []byte
			if c.opts.remote != "" {
				client, closeFn, err := c.client()
				if err != nil {
					return err
				}
				defer closeFn()
				resp, err := client.ExportRun(ctx, id.String())
				if err != nil {
					return err
				}
				xlsx = resp.XLSX
			} else {
				a, err := c.local(ctx, app.Options{})
				if err != nil {
					return err
				}
				defer a.Close()
				if xlsx, err = a.Exporter.ExportRunXLSX(ctx, id); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "run %s written to %s\n", id, out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "destination .xlsx or .csv")
	cmd.Flags().StringVar(&runID, "run", "", "export a stored run instead of extracting")
	return cmd
}
