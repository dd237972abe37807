package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/adapter/repository/postgres"
	"github.com/gnuhannes/my-private-finances/internal/adapter/source"
	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
)

type importCSVCmd struct {
	account      string
	profile      string
	delimiter    string
	dateFormat   string
	decimalComma bool
	maxErrors    int
}

func (*importCSVCmd) Name() string     { return "import-csv" }
func (*importCSVCmd) Synopsis() string { return "import a delimited bank export into an account" }
func (*importCSVCmd) Usage() string {
	return `import-csv -account <id> [-profile <name>] [-delimiter <c>] [-date-format <iso|dmy>] [-decimal-comma] <file>

  Imports every row of <file> into the account. <file> is a local path,
  a gs://bucket/object URI or "-" for stdin. Rows already imported are
  counted as duplicates. Exits with status 1 when any row failed.

  The locale starts from -profile, or a comma separated export with ISO
  dates. Each locale flag given on the command line replaces that field.
`
}

func (c *importCSVCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Target account id (required)")
	f.StringVar(&c.profile, "profile", "", "Name of a stored CSV profile")
	f.StringVar(&c.delimiter, "delimiter", ",", "Field delimiter, overrides the profile")
	f.StringVar(&c.dateFormat, "date-format", string(domain.DateFormatISO), "Date format: iso or dmy, overrides the profile")
	f.BoolVar(&c.decimalComma, "decimal-comma", false, "Amounts use a decimal comma, overrides the profile")
	f.IntVar(&c.maxErrors, "max-errors", 0, "Maximum number of error messages reported")
}

func (c *importCSVCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accountID, ok := parseAccount(c.account)
	if !ok || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -account and exactly one file are required.")
		return subcommands.ExitUsageError
	}

	overrides, err := c.overrides(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	content, err := source.ReadAll(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.Imports.ImportCSV(ctx, importer.CSVInput{
		AccountID: accountID,
		Content:   bytes.NewReader(content),
		Profile:   c.profile,
		Overrides: overrides,
		MaxErrors: c.maxErrors,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	printMarkdown(importReport(f.Arg(0), res))
	if res.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// overrides returns the locale fields set explicitly on the command line.
func (c *importCSVCmd) overrides(f *flag.FlagSet) (domain.LocaleOverride, error) {
	var o domain.LocaleOverride
	var err error
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "delimiter":
			if utf8.RuneCountInString(c.delimiter) != 1 {
				err = errors.New("-delimiter must be a single character")
				return
			}
			d, _ := utf8.DecodeRuneInString(c.delimiter)
			o.Delimiter = &d
		case "date-format":
			df := domain.DateFormat(c.dateFormat)
			o.DateFormat = &df
		case "decimal-comma":
			dc := c.decimalComma
			o.DecimalComma = &dc
		}
	})
	return o, err
}

type importPDFCmd struct {
	account   string
	maxErrors int
}

func (*importPDFCmd) Name() string     { return "import-pdf" }
func (*importPDFCmd) Synopsis() string { return "import a PDF account statement into an account" }
func (*importPDFCmd) Usage() string {
	return `import-pdf -account <id> <file>

  Extracts the transaction table of a PDF statement and imports its rows.
  Exits with status 1 when any row failed.
`
}

func (c *importPDFCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Target account id (required)")
	f.IntVar(&c.maxErrors, "max-errors", 0, "Maximum number of error messages reported")
}

func (c *importPDFCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accountID, ok := parseAccount(c.account)
	if !ok || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -account and exactly one file are required.")
		return subcommands.ExitUsageError
	}

	content, err := source.ReadAll(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.Imports.ImportPDF(ctx, importer.PDFInput{
		AccountID: accountID,
		Content:   content,
		MaxErrors: c.maxErrors,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	printMarkdown(importReport(f.Arg(0), res))
	if res.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type detectTransfersCmd struct {
	window int
}

func (*detectTransfersCmd) Name() string     { return "detect-transfers" }
func (*detectTransfersCmd) Synopsis() string { return "propose transfer pairs across accounts" }
func (*detectTransfersCmd) Usage() string {
	return `detect-transfers [-window <days>]

  Pairs outgoing and incoming transactions of equal amount in different
  accounts and stores new pending candidates.
`
}

func (c *detectTransfersCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.window, "window", 0, "Maximum days between the legs (0 uses TRANSFER_WINDOW_DAYS)")
}

func (c *detectTransfersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.window < 0 {
		fmt.Fprintln(os.Stderr, "Error: -window must not be negative.")
		return subcommands.ExitUsageError
	}

	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	created, err := a.Transfers.Detect(ctx, c.window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error detecting transfers: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(transferReport(created))
	return subcommands.ExitSuccess
}

type detectRecurringCmd struct {
	account string
}

func (*detectRecurringCmd) Name() string     { return "detect-recurring" }
func (*detectRecurringCmd) Synopsis() string { return "detect recurring bills of an account" }
func (*detectRecurringCmd) Usage() string {
	return `detect-recurring -account <id>

  Classifies the payee history of the account and merges the detected
  patterns into the stored ones.
`
}

func (c *detectRecurringCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id (required)")
}

func (c *detectRecurringCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accountID, ok := parseAccount(c.account)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}

	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	patterns, err := a.Recurring.Detect(ctx, accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error detecting recurring patterns: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(recurringReport(patterns))
	return subcommands.ExitSuccess
}

type applyRulesCmd struct{}

func (*applyRulesCmd) Name() string     { return "apply-rules" }
func (*applyRulesCmd) Synopsis() string { return "categorize uncategorized transactions" }
func (*applyRulesCmd) Usage() string {
	return `apply-rules

  Runs the ordered categorization rules over every uncategorized transaction.
`
}

func (*applyRulesCmd) SetFlags(*flag.FlagSet) {}

func (*applyRulesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.Rules.ApplyToUncategorized(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error applying rules: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("categorized %d of %d uncategorized transactions\n", res.Categorized, res.Scanned)
	return subcommands.ExitSuccess
}

type recurringSummaryCmd struct {
	account string
}

func (*recurringSummaryCmd) Name() string     { return "recurring-summary" }
func (*recurringSummaryCmd) Synopsis() string { return "show the monthly cost of recurring bills" }
func (*recurringSummaryCmd) Usage() string {
	return `recurring-summary -account <id>

  Prints the active recurring patterns of the account grouped by frequency
  and their total normalised to one month.
`
}

func (c *recurringSummaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id (required)")
}

func (c *recurringSummaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accountID, ok := parseAccount(c.account)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}

	a, ok := openApp(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	account, err := a.Accounts.GetByID(ctx, accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	summary, err := a.Recurring.Summary(ctx, accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building summary: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(summaryReport(account, summary))
	return subcommands.ExitSuccess
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies every pending schema migration and exits.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := postgres.Migrate(db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error migrating database: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func parseAccount(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
