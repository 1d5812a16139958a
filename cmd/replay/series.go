package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aelred/TheGreaterFool/internal/catalog"
	"github.com/aelred/TheGreaterFool/internal/series"
)

func runSeries(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("series", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	auction := fs.String("auction", "", "auction name, e.g. HotelTT3 (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := singleLog(fs.Args())
	if err != nil {
		return err
	}

	res, err := e.load(ctx, path)
	if err != nil {
		return err
	}

	name := *auction
	if name == "" {
		name, err = promptAuction(e.stdin, e.stderr)
		if err != nil {
			return err
		}
	}

	chart, err := series.BuildChart(res.Game, name, e.cfg.TicksPerMinute, e.cfg.MaxGameMinutes)
	if err != nil {
		return err
	}
	return writeChartCSV(e.stdout, chart)
}

// promptAuction asks for a resource and a day and returns the auction name.
func promptAuction(in io.Reader, out io.Writer) (string, error) {
	sc := bufio.NewScanner(in)

	fmt.Fprintln(out, "Resources:")
	for _, r := range catalog.Resources {
		fmt.Fprintf(out, "  %s) %s\n", r.Code, r.Name)
	}
	fmt.Fprint(out, "Resource: ")
	answer, err := readLine(sc)
	if err != nil {
		return "", err
	}
	res, err := catalog.ResourceByCode(answer)
	if err != nil {
		// accept the name as well as the code
		res = catalog.Resource(answer)
	}

	fmt.Fprintf(out, "Day (%d-%d): ", catalog.FirstDay, catalog.LastDay)
	answer, err = readLine(sc)
	if err != nil {
		return "", err
	}
	day, err := strconv.Atoi(answer)
	if err != nil {
		return "", fmt.Errorf("invalid day %q", answer)
	}

	name := catalog.AuctionName(res, day)
	if _, _, err := catalog.ParseAuctionName(name); err != nil {
		return "", err
	}
	return name, nil
}

func readLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

// writeChartCSV writes one row per minute. Undefined values are empty cells.
func writeChartCSV(w io.Writer, c *series.Chart) error {
	cw := csv.NewWriter(w)

	header := []string{"minute", "sell", "buy"}
	for _, line := range c.Bids {
		header = append(header, line.Agent)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for m := 0; m < c.Minutes; m++ {
		row[0] = strconv.Itoa(m)
		row[1] = cell(c.Sell[m])
		row[2] = cell(c.Buy[m])
		for i, line := range c.Bids {
			row[3+i] = cell(line.Prices[m])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
