package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/docsource"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

func newClassifyCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file|->",
		Short: "Show how a document is classified without extracting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			text, name := "", "stdin.txt"
			if args[0] == "-" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				text = string(b)
			} else {
				doc, err := docsource.NewLoader(docsource.Config{}, common.NewLogger(c.cfg.Log, os.Stderr)).Load(ctx, args[0])
				if err != nil {
					return err
				}
				text, name = doc.Text, doc.FileName
			}

			var analysis entity.DocumentAnalysis
			if c.opts.remote != "" {
				client, closeFn, err := c.client()
				if err != nil {
					return err
				}
				defer closeFn()
				resp, err := client.Classify(ctx, server.ClassifyRequest{Text: text, FileName: name})
				if err != nil {
					return err
				}
				analysis = resp.Analysis
			} else {
				a, err := c.local(ctx, app.Options{WithoutStore: true})
				if err != nil {
					return err
				}
				defer a.Close()
				analysis = a.Extractor.Analyze(text, name)
			}

			if c.opts.output == "json" {
				return writeJSON(c.stdout, analysis)
			}
			fmt.Fprintf(c.stdout, "type:        %s (%.2f)\n", analysis.Type, analysis.Confidence)
			fmt.Fprintf(c.stdout, "structure:   %s\n", analysis.Structure)
			fmt.Fprintf(c.stdout, "complexity:  %s\n", analysis.Complexity)
			fmt.Fprintf(c.stdout, "est. people: %d\n", analysis.EstimatedContactCount)
			if len(analysis.Sections) > 0 {
				fmt.Fprintf(c.stdout, "sections:    %v\n", analysis.Sections)
			}
			keys := make([]string, 0, len(analysis.Scores))
			for k := range analysis.Scores {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(c.stdout, "  %-12s %.3f\n", k, analysis.Scores[k])
			}
			return nil
		},
	}
}
