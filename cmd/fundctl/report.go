package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
)

// recordReport renders a history record as markdown
func (a *app) recordReport(detail *dto.RecordDetail) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Rebalance #%d\n\n", detail.Record.ID)
	fmt.Fprintf(&sb, "- **Date**: %s\n", detail.Record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "- **Threshold**: %s\n", percent(detail.Record.Threshold))
	fmt.Fprintf(&sb, "- **Total value**: %s\n\n", a.amount(detail.Record.TotalValue))

	sb.WriteString("## Suggestions\n\n")
	sb.WriteString("| Bucket | Fund | Code | Current | Target | Diff | Advice |\n")
	sb.WriteString("|---|---|---|---:|---:|---:|---|\n")
	for _, s := range detail.Suggestions {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | **%s** |\n",
			escapeCell(s.BucketName), escapeCell(s.FundName), s.FundCode,
			a.amount(s.CurrentValue), a.amount(s.TargetValue), a.signedAmount(s.DiffValue), s.Advice)
	}

	sb.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&sb, "- **Buy**: %d fund(s), %s\n", detail.Stats.BuyCount, a.amount(detail.Stats.TotalBuy))
	fmt.Fprintf(&sb, "- **Sell**: %d fund(s), %s\n", detail.Stats.SellCount, a.amount(detail.Stats.TotalSell))
	fmt.Fprintf(&sb, "- **Hold**: %d fund(s)\n", detail.Stats.HoldCount)

	return sb.String()
}

// printMarkdown writes the report styled for the terminal, or as is with -plain
func (a *app) printMarkdown(md string) error {
	if a.plain {
		_, err := fmt.Fprint(a.out, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = fmt.Fprint(a.out, out)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
