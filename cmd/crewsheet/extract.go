package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

type extractFlags struct {
	strategy    string
	maxContacts int
	disableAI   bool
	rolePrefs   []string
	noStore     bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.strategy, "strategy", "", "force a strategy: pattern|component|ai_only|hybrid")
	fl.IntVar(&f.maxContacts, "max-contacts", 0, "cap the number of contacts returned")
	fl.BoolVar(&f.disableAI, "disable-ai", false, "never call the AI enhancer")
	fl.StringSliceVar(&f.rolePrefs, "prefer-role", nil, "roles to list first (repeatable)")
	fl.BoolVar(&f.noStore, "no-store", false, "do not persist the run")
}

func (f *extractFlags) options() entity.Options {
	return entity.Options{
		MaxContacts:       f.maxContacts,
		PreferredStrategy: constants.Strategy(f.strategy),
		RolePreferences:   f.rolePrefs,
		DisableAI:         f.disableAI,
	}
}

func newExtractCommand(c *cli) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Extract contacts from one document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			resp, err := c.extract(ctx, args[0], flags)
			if err != nil {
				return err
			}
			if err := c.printResult(resp); err != nil {
				return err
			}
			if !resp.Result.Success {
				return fmt.Errorf("extraction failed: %s", resp.Result.Error)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) extract(ctx context.Context, path string, flags extractFlags) (server.ExtractResponse, error) {
	opts := flags.options()
	var stdin string
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return server.ExtractResponse{}, err
		}
		stdin = string(b)
	}

	if c.opts.remote != "" {
		client, closeFn, err := c.client()
		if err != nil {
			return server.ExtractResponse{}, err
		}
		defer closeFn()
		if path == "-" {
			return client.ExtractText(ctx, server.ExtractTextRequest{Text: stdin, FileName: "stdin.txt", Options: opts})
		}
		return client.ExtractPath(ctx, path, opts)
	}

	a, err := c.local(ctx, app.Options{WithoutStore: flags.noStore})
	if err != nil {
		return server.ExtractResponse{}, err
	}
	defer a.Close()

	if path == "-" {
		out, err := a.Processor.ProcessText(ctx, "stdin.txt", stdin, opts)
		if err != nil {
			return server.ExtractResponse{}, err
		}
		return server.ExtractResponse{RunID: out.RunID.String(), Result: out.Result}, nil
	}
	out, err := a.Processor.ProcessFile(ctx, path, opts)
	if err != nil {
		return server.ExtractResponse{}, err
	}
	return server.ExtractResponse{RunID: out.RunID.String(), Result: out.Result}, nil
}
