package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"fintrack/internal/auth"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// Exit codes returned by Dispatcher.Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const (
	envUsername = "FINTRACK_USERNAME"
	envPassword = "FINTRACK_PASSWORD"
)

var errUsage = errors.New("usage")

// Dispatcher turns one command line into calls on the ledger and reports.
// A failing command never takes the process down; it only sets the exit code.
type Dispatcher struct {
	Auth      *auth.Provider
	Ledger    *services.Ledger
	Reports   *services.ReportService
	ExportDir string

	Out    io.Writer
	Err    io.Writer
	Getenv func(string) string
}

type command struct {
	usage string
	run   func(d *Dispatcher, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register": {"register -user NAME -password SECRET", (*Dispatcher).register},
	"add":      {"add -type Income|Expense -category NAME -amount 12.34 -date YYYY-MM-DD", (*Dispatcher).add},
	"list":     {"list [-type Income|Expense|all]", (*Dispatcher).list},
	"show":     {"show -id N", (*Dispatcher).show},
	"edit":     {"edit -id N [-type T] [-category C] [-amount A] [-date D]", (*Dispatcher).edit},
	"delete":   {"delete -id N", (*Dispatcher).remove},
	"report":   {"report [-type Expense|Income|all]", (*Dispatcher).report},
	"chart":    {"chart [-type Expense|Income|all] [-width 40]", (*Dispatcher).chart},
	"budget":   {"budget -category NAME -limit 100.00", (*Dispatcher).budget},
	"export":   {"export [-scope transactions|report] [-format csv|xlsx] [-o NAME]", (*Dispatcher).export},
}

var commandOrder = []string{"register", "add", "list", "show", "edit", "delete", "report", "chart", "budget", "export"}

// Run executes args[0] with the remaining arguments and returns an exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		d.usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(d.Err, "unknown command %q\n", args[0])
		d.usage()
		return ExitUsage
	}

	err := cmd.run(d, ctx, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(d.Err, "usage: fintrack %s\n", cmd.usage)
		return ExitUsage
	default:
		if !core.IsValidation(err) {
			slog.ErrorContext(ctx, "Command failed", "command", args[0], "error", err)
		}
		fmt.Fprintf(d.Err, "error: %s\n", core.Message(err))
		return ExitFailure
	}
}

func (d *Dispatcher) usage() {
	fmt.Fprintln(d.Err, "usage: fintrack <command> [flags]")
	fmt.Fprintln(d.Err, "credentials: -user/-password or "+envUsername+"/"+envPassword)
	for _, name := range commandOrder {
		fmt.Fprintf(d.Err, "  %s\n", commands[name].usage)
	}
}

type credentials struct {
	user, password string
}

func (d *Dispatcher) newFlagSet(name string) (*flag.FlagSet, *credentials) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c := &credentials{}
	fs.StringVar(&c.user, "user", "", "username")
	fs.StringVar(&c.password, "password", "", "password")
	return fs, c
}

func (d *Dispatcher) getenv(key string) string {
	if d.Getenv != nil {
		return d.Getenv(key)
	}
	return os.Getenv(key)
}

func (d *Dispatcher) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}
	if fs.NArg() > 0 {
		return errUsage
	}
	return nil
}

func (d *Dispatcher) resolve(c *credentials) (string, string) {
	user, password := c.user, c.password
	if user == "" {
		user = d.getenv(envUsername)
	}
	if password == "" {
		password = d.getenv(envPassword)
	}
	return user, password
}

func (d *Dispatcher) login(ctx context.Context, c *credentials) (core.UserID, error) {
	user, password := d.resolve(c)
	return d.Auth.Authenticate(ctx, user, password)
}

func (d *Dispatcher) register(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("register")
	if err := d.parse(fs, args); err != nil {
		return err
	}
	user, password := d.resolve(creds)
	id, err := d.Auth.Register(ctx, user, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "registered %s (id %d)\n", strings.TrimSpace(user), id)
	return nil
}

func (d *Dispatcher) add(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("add")
	kind := fs.String("type", "", "Income or Expense")
	category := fs.String("category", "", "category name")
	amount := fs.String("amount", "", "positive amount, at most two decimals")
	date := fs.String("date", "", "YYYY-MM-DD")
	if err := d.parse(fs, args); err != nil {
		return err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	in, err := core.ParseTransactionInput(*kind, *category, *amount, *date)
	if err != nil {
		return err
	}
	tx, err := d.Ledger.AddTransaction(ctx, userID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "added transaction %d\n", tx.ID)
	return nil
}

func (d *Dispatcher) list(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("list")
	kind := fs.String("type", "all", "Income, Expense or all")
	if err := d.parse(fs, args); err != nil {
		return err
	}
	filter, err := core.ParseKindFilter(*kind)
	if err != nil {
		return err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	txs, err := d.Ledger.ListTransactions(ctx, userID, filter)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(d.Out, "no transactions")
		return nil
	}
	return writeTable(d.Out, report.TransactionsTable(txs))
}

func idFlag(fs *flag.FlagSet) *int64 {
	return fs.Int64("id", 0, "transaction id")
}

func (d *Dispatcher) show(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("show")
	id := idFlag(fs)
	if err := d.parse(fs, args); err != nil {
		return err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	tx, err := d.Ledger.GetTransaction(ctx, userID, core.TransactionID(*id))
	if err != nil {
		return err
	}
	return writeTable(d.Out, report.TransactionsTable([]core.Transaction{tx}))
}

func (d *Dispatcher) edit(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("edit")
	id := idFlag(fs)
	kind := fs.String("type", "", "new type")
	category := fs.String("category", "", "new category")
	amount := fs.String("amount", "", "new amount")
	date := fs.String("date", "", "new date")
	if err := d.parse(fs, args); err != nil {
		return err
	}

	// Only flags given on the command line take part in the patch.
	var patch core.TransactionPatch
	var perr error
	fs.Visit(func(f *flag.Flag) {
		if perr != nil {
			return
		}
		switch f.Name {
		case "type":
			k, err := core.ParseKind(*kind)
			patch.Kind, perr = &k, err
		case "category":
			patch.Category = category
		case "amount":
			m, err := core.ParseMoney(*amount)
			patch.Amount, perr = &m, err
		case "date":
			dt, err := core.ParseDate(*date)
			patch.Date, perr = &dt, err
		}
	})
	if perr != nil {
		return perr
	}

	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	tx, err := d.Ledger.EditTransaction(ctx, userID, core.TransactionID(*id), patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "updated transaction %d\n", tx.ID)
	return writeTable(d.Out, report.TransactionsTable([]core.Transaction{tx}))
}

func (d *Dispatcher) remove(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("delete")
	id := idFlag(fs)
	if err := d.parse(fs, args); err != nil {
		return err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	if err := d.Ledger.DeleteTransaction(ctx, userID, core.TransactionID(*id)); err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "deleted transaction %d\n", *id)
	return nil
}

func (d *Dispatcher) categoryRows(ctx context.Context, name string, args []string, extra func(*flag.FlagSet)) ([]core.AggregationRow, error) {
	fs, creds := d.newFlagSet(name)
	kind := fs.String("type", string(core.Expense), "Expense, Income or all")
	if extra != nil {
		extra(fs)
	}
	if err := d.parse(fs, args); err != nil {
		return nil, err
	}
	filter, err := core.ParseKindFilter(*kind)
	if err != nil {
		return nil, err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return d.Reports.CategoryReport(ctx, userID, filter)
}

func (d *Dispatcher) report(ctx context.Context, args []string) error {
	rows, err := d.categoryRows(ctx, "report", args, nil)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(d.Out, "no transactions")
		return nil
	}
	t := report.ToTable(rows)
	t.Rows = append(t.Rows, []string{"total", report.GrandTotal(rows).String()})
	return writeTable(d.Out, t)
}

func (d *Dispatcher) chart(ctx context.Context, args []string) error {
	var width int
	rows, err := d.categoryRows(ctx, "chart", args, func(fs *flag.FlagSet) {
		fs.IntVar(&width, "width", 40, "bar width for 100%")
	})
	if err != nil {
		return err
	}
	return chart.TextRenderer{Width: width}.Render(d.Out, rows)
}

func (d *Dispatcher) budget(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("budget")
	category := fs.String("category", "", "category to check")
	limit := fs.String("limit", "", "spending limit")
	if err := d.parse(fs, args); err != nil {
		return err
	}
	goal, err := core.ParseBudgetGoal(*category, *limit)
	if err != nil {
		return err
	}
	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}
	res, err := d.Reports.CheckBudget(ctx, userID, goal)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "%s: spent %s of %s, %s\n", res.Category, res.TotalSpent, res.Limit, strings.ToLower(string(res.Status)))
	return nil
}

func (d *Dispatcher) export(ctx context.Context, args []string) error {
	fs, creds := d.newFlagSet("export")
	scope := fs.String("scope", "transactions", "transactions or report")
	format := fs.String("format", "csv", "csv or xlsx")
	kind := fs.String("type", string(core.Expense), "report kind: Expense, Income or all")
	name := fs.String("o", "", "output file name inside the export directory")
	if err := d.parse(fs, args); err != nil {
		return err
	}

	enc, ok := export.EncoderFor(*format)
	if !ok || (*scope != "transactions" && *scope != "report") {
		return errUsage
	}
	dest := strings.TrimSuffix(*name, "."+enc.Extension())
	if dest == "" {
		dest = *scope
	}

	userID, err := d.login(ctx, creds)
	if err != nil {
		return err
	}

	exp := export.NewFileExporter(d.ExportDir, enc)
	if *scope == "report" {
		filter, ferr := core.ParseKindFilter(*kind)
		if ferr != nil {
			return ferr
		}
		err = d.Reports.ExportReport(ctx, userID, filter, exp, dest)
	} else {
		err = d.Reports.ExportTransactions(ctx, userID, exp, dest)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "exported %s to %s\n", *scope, exp.Path(dest))
	return nil
}

func writeTable(w io.Writer, t core.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
