package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/app"
	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/position"
	"github.com/camuig/gold-ledger/internal/records"
)

type priceCmd struct {
	*env
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "resolve the reference gold price once" }
func (*priceCmd) Usage() string {
	return `goldctl price

  Runs the price cascade once (cache snapshot, live sources, stale, synthetic)
  and prints the result with its provenance.
`
}
func (*priceCmd) SetFlags(*flag.FlagSet) {}

func (c *priceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rt, err := c.open()
	if err != nil {
		return fail(err)
	}
	resolver, err := app.NewResolver(ctx, rt.cfg, feeds.NewClient(rt.cfg, rt.log), rt.repo, rt.log)
	if err != nil {
		return fail(err)
	}
	p := resolver.Resolve(ctx)
	fmt.Fprintf(c.out, "%s/g\t%s\t%s\n", ledger.FormatCNY(p.AmountPerGram), p.SourceLabel(),
		p.ObservedAt.Local().Format("2006-01-02 15:04:05"))
	return subcommands.ExitSuccess
}

type usersCmd struct {
	*env
}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "list users with their net position" }
func (*usersCmd) Usage() string {
	return `goldctl users

  Lists every registered user, newest first, with net weight and net investment.
`
}
func (*usersCmd) SetFlags(*flag.FlagSet) {}

func (c *usersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rt, err := c.open()
	if err != nil {
		return fail(err)
	}
	overview, err := records.NewService(rt.repo, rt.log).Overview(ctx, rt.repo)
	if err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tPHONE\tNICKNAME\tRECORDS\tWEIGHT\tNET INVESTMENT")
	for _, u := range overview {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", u.UserID, u.Phone, u.Nickname, u.Records,
			ledger.FormatGrams(u.TotalWeight), ledger.FormatCNY(u.TotalCost))
	}
	if err := tw.Flush(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type recordsCmd struct {
	*env
	user string
}

func (*recordsCmd) Name() string     { return "records" }
func (*recordsCmd) Synopsis() string { return "list one user's gold records" }
func (*recordsCmd) Usage() string {
	return `goldctl records -user <id>

  Lists the user's records, newest trade first.
`
}

func (c *recordsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user ID")
}

func (c *recordsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		return fail(fmt.Errorf("-user is required"))
	}
	rt, err := c.open()
	if err != nil {
		return fail(err)
	}
	listing, err := records.NewService(rt.repo, rt.log).List(ctx, c.user)
	if err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSIDE\tWEIGHT\tUNIT PRICE\tTOTAL\tCATEGORY\tCHANNEL")
	for _, r := range listing.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.TradeTime.Format("2006-01-02"), r.TradeType,
			ledger.FormatGrams(r.Weight), ledger.FormatCNY(r.UnitPrice), ledger.FormatCNY(r.TotalPrice),
			r.Category, r.Channel)
	}
	if err := tw.Flush(); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.out, "\nnet weight %s, net investment %s\n",
		ledger.FormatGrams(listing.Summary.NetWeightGrams), ledger.FormatCNY(listing.Summary.NetInvestment))
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	*env
	user  string
	price string
	live  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show a user's position, optionally valued" }
func (*summaryCmd) Usage() string {
	return `goldctl summary -user <id> [-price <cny/g> | -live]

  Prints net weight and net investment. With -price or -live the position is
  valued and the unrealized PnL is shown.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user ID")
	f.StringVar(&c.price, "price", "", "value at this CNY per gram")
	f.BoolVar(&c.live, "live", false, "value at the resolved reference price")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		return fail(fmt.Errorf("-user is required"))
	}
	choice := position.PriceChoice{Live: c.live}
	if c.price != "" {
		p, err := decimal.NewFromString(c.price)
		if err != nil {
			return fail(fmt.Errorf("invalid -price %q: %w", c.price, err))
		}
		if err := ledger.CheckMagnitude("price", p); err != nil {
			return fail(err)
		}
		choice.Explicit = &p
	}

	rt, err := c.open()
	if err != nil {
		return fail(err)
	}
	var resolver position.PriceResolver
	if choice.Live && choice.Explicit == nil {
		resolver, err = app.NewResolver(ctx, rt.cfg, feeds.NewClient(rt.cfg, rt.log), rt.repo, rt.log)
		if err != nil {
			return fail(err)
		}
	}

	report, err := position.NewService(records.NewService(rt.repo, rt.log), resolver).Report(ctx, c.user, choice)
	if err != nil {
		return fail(err)
	}
	r := report.Rounded()
	fmt.Fprintf(c.out, "net weight      %s\n", ledger.FormatGrams(r.Summary.NetWeightGrams))
	fmt.Fprintf(c.out, "net investment  %s\n", ledger.FormatCNY(r.Summary.NetInvestment))
	if v := r.Valuation; v != nil {
		fmt.Fprintf(c.out, "price           %s/g (%s)\n", ledger.FormatCNY(v.PricePerGram), v.PriceSource)
		fmt.Fprintf(c.out, "priced at       %s\n", v.PricedAt.Format(time.DateTime))
		fmt.Fprintf(c.out, "market value    %s\n", ledger.FormatCNY(v.MarketValue))
		fmt.Fprintf(c.out, "unrealized PnL  %s\n", ledger.FormatCNY(v.UnrealizedPnL))
	}
	return subcommands.ExitSuccess
}
