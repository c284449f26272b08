package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
)

type bucketsCmd struct {
	*app
}

func (*bucketsCmd) Name() string     { return "buckets" }
func (*bucketsCmd) Synopsis() string { return "list buckets and their funds" }
func (*bucketsCmd) Usage() string {
	return `fundctl buckets

  Prints every bucket with its target rate, and every fund with its index,
  code, current value and weight. Indexes are what add, edit and delete expect.
`
}
func (*bucketsCmd) SetFlags(*flag.FlagSet) {}

func (c *bucketsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	buckets, err := c.client().ListBuckets(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.printBuckets(buckets)
	return subcommands.ExitSuccess
}

func (a *app) printBuckets(buckets []dto.Bucket) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for i, b := range buckets {
		fmt.Fprintf(w, "[%d] %s\ttarget %s\t\t\n", i, b.Name, percent(b.TargetRate))
		for j, f := range b.Funds {
			fmt.Fprintf(w, "    %d.%d %s\t%s\t%s\tweight %s\n", i, j, f.Name, f.Code, a.amount(f.Current), percent(f.Weight))
		}
	}
	w.Flush()
}

type addCmd struct {
	*app
	bucket  int
	name    string
	code    string
	current string
	weight  string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a fund to a bucket" }
func (*addCmd) Usage() string {
	return `fundctl add -b <bucket> -name <name> -code <code> -current <value> -weight <0..1>

  Appends a fund to the bucket at the given index. Weight is the fund's share
  of its bucket and must be in (0, 1].
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.bucket, "b", 0, "Bucket index")
	f.StringVar(&c.name, "name", "", "Fund name")
	f.StringVar(&c.code, "code", "", "Fund code")
	f.StringVar(&c.current, "current", "0", "Current value held")
	f.StringVar(&c.weight, "weight", "", "Share of the bucket, in (0, 1]")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	buckets, err := c.client().AddFund(ctx, dto.AddFundRequest{
		BucketIndex: c.bucket,
		Name:        c.name,
		Code:        c.code,
		Current:     dto.Number(c.current),
		Weight:      dto.Number(c.weight),
	})
	if err != nil {
		return c.fail(err)
	}
	c.printBuckets(buckets)
	return subcommands.ExitSuccess
}

type editCmd struct {
	*app
	bucket  int
	fund    int
	field   string
	value   string
	name    string
	code    string
	current string
	weight  string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit one or several fields of a fund" }
func (*editCmd) Usage() string {
	return `fundctl edit -b <bucket> -f <fund> -field <name|code|current|weight> -value <value>
fundctl edit -b <bucket> -f <fund> [-name <name>] [-code <code>] [-current <value>] [-weight <w>]

  The first form changes exactly one field. The second form changes every
  given field at once: either all of them are applied or none is.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.bucket, "b", 0, "Bucket index")
	f.IntVar(&c.fund, "f", 0, "Fund index within the bucket")
	f.StringVar(&c.field, "field", "", "Single field to change")
	f.StringVar(&c.value, "value", "", "New value for -field")
	f.StringVar(&c.name, "name", "", "New name")
	f.StringVar(&c.code, "code", "", "New code")
	f.StringVar(&c.current, "current", "", "New current value")
	f.StringVar(&c.weight, "weight", "", "New weight")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var (
		buckets []dto.Bucket
		err     error
	)

	if c.field != "" {
		buckets, err = c.client().UpdateFund(ctx, dto.UpdateFundRequest{
			BucketIndex: c.bucket,
			FundIndex:   c.fund,
			Field:       c.field,
			Value:       dto.Number(c.value),
		})
	} else {
		req, ok := c.patch(f)
		if !ok {
			fmt.Fprintln(c.out, c.Usage())
			return subcommands.ExitUsageError
		}
		buckets, err = c.client().PatchFund(ctx, req)
	}
	if err != nil {
		return c.fail(err)
	}

	c.printBuckets(buckets)
	return subcommands.ExitSuccess
}

// patch builds a request from the flags that were explicitly set
func (c *editCmd) patch(f *flag.FlagSet) (dto.PatchFundRequest, bool) {
	req := dto.PatchFundRequest{BucketIndex: c.bucket, FundIndex: c.fund}
	set := false
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			req.Name = &c.name
		case "code":
			req.Code = &c.code
		case "current":
			v := dto.Number(c.current)
			req.Current = &v
		case "weight":
			v := dto.Number(c.weight)
			req.Weight = &v
		default:
			return
		}
		set = true
	})
	return req, set
}

type deleteCmd struct {
	*app
	bucket int
	fund   int
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a fund" }
func (*deleteCmd) Usage() string {
	return `fundctl delete -b <bucket> -f <fund>

  Removes the fund; the funds after it shift down one index.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.bucket, "b", 0, "Bucket index")
	f.IntVar(&c.fund, "f", 0, "Fund index within the bucket")
}

func (c *deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	buckets, err := c.client().DeleteFund(ctx, dto.DeleteFundRequest{BucketIndex: c.bucket, FundIndex: c.fund})
	if err != nil {
		return c.fail(err)
	}
	c.printBuckets(buckets)
	return subcommands.ExitSuccess
}
