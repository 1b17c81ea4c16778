package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

func newRunsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored extraction runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			runs, err := c.listRuns(ctx, limit)
			if err != nil {
				return err
			}
			if c.opts.output == "json" {
				return writeJSON(c.stdout, runs)
			}
			return writeRunTable(c.stdout, runs)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("run id must be a UUID: %w", err)
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			resp, err := c.showRun(ctx, id)
			if err != nil {
				return err
			}
			if c.opts.output == "json" {
				return writeJSON(c.stdout, resp)
			}
			if err := writeRunTable(c.stdout, []entity.ExtractionRun{resp.Run}); err != nil {
				return err
			}
			if resp.Run.ErrorMessage != "" {
				fmt.Fprintf(c.stdout, "error: %s\n", resp.Run.ErrorMessage)
			}
			fmt.Fprintln(c.stdout)
			return writeContactTable(c.stdout, resp.Contacts)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func (c *cli) listRuns(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if c.opts.remote != "" {
		client, closeFn, err := c.client()
		if err != nil {
			return nil, err
		}
		defer closeFn()
		resp, err := client.ListRuns(ctx, limit)
		return resp.Runs, err
	}
	a, err := c.local(ctx, app.Options{})
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Runs.ListRuns(ctx, limit)
}

func (c *cli) showRun(ctx context.Context, id uuid.UUID) (server.RunResponse, error) {
	if c.opts.remote != "" {
		client, closeFn, err := c.client()
		if err != nil {
			return server.RunResponse{}, err
		}
		defer closeFn()
		return client.GetRun(ctx, id.String())
	}
	a, err := c.local(ctx, app.Options{})
	if err != nil {
		return server.RunResponse{}, err
	}
	defer a.Close()

	run, err := a.Runs.GetRun(ctx, id)
	if err != nil {
		return server.RunResponse{}, err
	}
	contacts, err := a.Runs.ListContacts(ctx, id)
	if err != nil {
		return server.RunResponse{}, err
	}
	return server.RunResponse{Run: run, Contacts: contacts}, nil
}

func (c *cli) runContacts(ctx context.Context, id uuid.UUID) ([]entity.Contact, error) {
	resp, err := c.showRun(ctx, id)
	return resp.Contacts, err
}
