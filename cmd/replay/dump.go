package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/aelred/TheGreaterFool/internal/api"
	"github.com/aelred/TheGreaterFool/internal/model"
)

func runDump(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := singleLog(fs.Args())
	if err != nil {
		return err
	}
	if *format != "json" && *format != "yaml" {
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}

	res, err := e.load(ctx, path)
	if err != nil {
		return err
	}
	return writeGame(e.stdout, res.Game, *format)
}

func writeGame(w io.Writer, game *model.GameInfo, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(game); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(game); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func runAuctions(ctx context.Context, e *env, args []string) error {
	path, err := singleLog(args)
	if err != nil {
		return err
	}
	res, err := e.load(ctx, path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRESOURCE\tDAY\tQUOTES\tTRADES\tBIDDERS\tCLOSED")
	for pair := res.Game.Auctions.Oldest(); pair != nil; pair = pair.Next() {
		s := api.SummarizeAuction(pair.Value)
		closed := "-"
		if s.Closed != nil {
			closed = fmt.Sprint(*s.Closed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Name, s.Resource, s.Day, s.Quotes, s.Transactions, len(s.Bidders), closed)
	}
	return tw.Flush()
}
