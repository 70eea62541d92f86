package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/docsearch/internal/models"
	"github.com/xhad/docsearch/internal/types"
	"github.com/xhad/docsearch/pkg/service"
)

func newSearchCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search uploaded documents",
		Long:  "Search uploaded documents. Without a query, reads queries from stdin until 'exit'.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				results, err := a.svc.Search(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printResults(cmd.OutOrStdout(), results, asJSON)
			}
			return searchLoop(cmd.Context(), a.svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

type searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

func searchLoop(ctx context.Context, svc searcher, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, color.CyanString("Search your documents (type 'exit' to quit)"))

	scanner := bufio.NewScanner(in)
	prompt := color.New(color.FgGreen).FprintfFunc()
	for {
		prompt(out, "\nQuery: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(query, "exit") || strings.EqualFold(query, "quit") {
			break
		}
		if query == "" {
			continue
		}

		results, err := svc.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(out, color.RedString("Search failed: %v", err))
			continue
		}
		if err := printResults(out, results, false); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printResults(out io.Writer, results []models.SearchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, color.YellowString("No results found."))
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%s %s %s\n",
			color.CyanString("[%d]", i+1),
			color.New(color.Bold).Sprint(r.FileName),
			color.GreenString("(%.3f, id %s)", r.Score, r.ID))
		fmt.Fprintln(out, preview(r.ContentPreview, 200))
		fmt.Fprintln(out)
	}
	return nil
}

func newSummarizeCmd(c *cli) *cobra.Command {
	var (
		id   int64
		name string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.SummarizeRequest{DocumentName: name}
			if cmd.Flags().Changed("id") {
				req.DocumentID = &id
			}

			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			spinner := getSpinner("Summarizing")
			summary, err := a.svc.Summarize(cmd.Context(), req)
			spinner.Finish()
			fmt.Println()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "document id")
	cmd.Flags().StringVar(&name, "name", "", "document file name")
	cmd.MarkFlagsOneRequired("id", "name")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and its index entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			a, err := c.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.svc.Delete(cmd.Context(), id)
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Deleted document %d", id))
				return nil
			case types.IsKind(err, types.KindPartialDelete):
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("Deleted document %d, but its stored file could not be removed", id))
			}
			return err
		},
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
