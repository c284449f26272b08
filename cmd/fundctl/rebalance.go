package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
)

type rebalanceCmd struct {
	*app
	threshold string
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "compute buy/sell/hold advice and record it" }
func (*rebalanceCmd) Usage() string {
	return `fundctl rebalance [-t <threshold>]

  Runs the rebalance engine against the current portfolio. A fund whose value
  deviates from its target by more than threshold times the target gets a
  BUY or SELL; the run is stored in history. Without -t the server default
  is used.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.threshold, "t", "", "Deviation threshold, e.g. 0.05")
}

func (c *rebalanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := c.client()
	buckets, err := client.Rebalance(ctx, dto.Number(c.threshold))
	if err != nil {
		return c.fail(err)
	}

	// The run just appended is the newest record
	latest, err := client.ListHistory(ctx, 1)
	if err != nil {
		return c.fail(err)
	}
	if len(latest) == 1 {
		fmt.Fprintf(c.out, "Record #%d  total %s  threshold %s\n\n",
			latest[0].ID, c.amount(latest[0].TotalValue), percent(latest[0].Threshold))
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s -> %s\tnow %s\ttarget %s\t\n",
			b.Name, c.amount(b.CurrentValue), c.amount(b.TargetValue), percent(b.CurrentRate), percent(b.TargetRate))
		for _, s := range b.Suggestions {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", s.Advice, s.FundCode, s.FundName, c.signedAmount(s.DiffValue), s.Reason)
		}
	}
	w.Flush()

	return subcommands.ExitSuccess
}

type historyCmd struct {
	*app
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent rebalance runs" }
func (*historyCmd) Usage() string {
	return `fundctl history [-n <limit>]

  Lists the most recent runs, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "Number of runs to list (server default when 0)")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	summaries, err := c.client().ListHistory(ctx, c.limit)
	if err != nil {
		return c.fail(err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(c.out, "No rebalance runs yet.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTHRESHOLD\tTOTAL")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), percent(s.Threshold), c.amount(s.TotalValue))
	}
	w.Flush()

	return subcommands.ExitSuccess
}

type showCmd struct {
	*app
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "render one rebalance run as a report" }
func (*showCmd) Usage() string {
	return `fundctl show <id>

  Renders the run's suggestions and statistics as a markdown report.
`
}
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.out, c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil || id < 1 {
		return c.fail(fmt.Errorf("invalid record id %q", f.Arg(0)))
	}

	detail, err := c.client().GetHistory(ctx, id)
	if err != nil {
		return c.fail(err)
	}

	if err := c.printMarkdown(c.recordReport(detail)); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}
