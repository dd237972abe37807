package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
	"github.com/gnuhannes/my-private-finances/internal/usecase/recurring"
)

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	out, err := renderMarkdown(md, *renderStyle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning, cannot render report: %v\n", err)
		out = md
	}
	fmt.Print(out)
}

func renderMarkdown(md, style string) (string, error) {
	opt := glamour.WithStandardStyle(style)
	if style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// formatMoney displays amount in the conventional notation of currency.
// Unknown currency codes print the plain decimal followed by the code.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func importReport(file string, res *importer.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Import of `%s`\n\n", file)
	b.WriteString("| total | created | duplicates | failed |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n", res.TotalRows, res.Created, res.Duplicates, res.Failed)

	if len(res.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "- %s\n", escapeCell(e))
		}
		if hidden := res.Failed - len(res.Errors); hidden > 0 {
			fmt.Fprintf(&b, "\n_%d more failures not shown_\n", hidden)
		}
	}
	return b.String()
}

func transferReport(candidates []*domain.TransferCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transfer candidates\n\n%d new pending candidates.\n", len(candidates))
	if len(candidates) == 0 {
		return b.String()
	}

	b.WriteString("\n| id | from | to | confidence |\n")
	b.WriteString("|---|---|---|---:|\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.ID, c.FromTransactionID, c.ToTransactionID, c.Confidence.StringFixed(2))
	}
	return b.String()
}

func recurringReport(patterns []*domain.RecurringPattern) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Recurring patterns\n\n%d created or updated.\n", len(patterns))
	if len(patterns) == 0 {
		return b.String()
	}

	b.WriteString("\n| payee | frequency | amount | confidence | occurrences | last seen |\n")
	b.WriteString("|---|---|---:|---:|---:|---|\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s |\n",
			escapeCell(p.Payee), p.Frequency, p.TypicalAmount.StringFixed(2),
			p.Confidence.StringFixed(2), p.OccurrenceCount, p.LastSeen.Format("2006-01-02"))
	}
	return b.String()
}

func summaryReport(account *domain.Account, s *recurring.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Recurring bills of %s\n\n", escapeCell(account.Name))
	fmt.Fprintf(&b, "**%s** per month across %d active patterns.\n", formatMoney(s.TotalMonthlyRecurring, account.Currency), s.PatternCount)
	if len(s.ByFrequency) == 0 {
		return b.String()
	}

	b.WriteString("\n| frequency | patterns | total |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, f := range s.ByFrequency {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", f.Frequency, f.Count, formatMoney(f.Total, account.Currency))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
