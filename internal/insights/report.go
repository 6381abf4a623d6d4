package insights

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// Report is everything the insights stage writes.
type Report struct {
	Comparison []BankComparison
	Themes     []DriversPainPoints
	Charts     []string // file names relative to the report
}

// Markdown renders the report as a Markdown document.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Bank Review Insights\n\n")

	b.WriteString("## Bank comparison\n\n")
	b.WriteString("| Bank | Mean sentiment | Mean rating | Reviews |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range r.Comparison {
		fmt.Fprintf(&b, "| %s | %.3f | %.2f | %d |\n", c.Bank, c.SentimentScore, c.Rating, c.ReviewCount)
	}

	b.WriteString("\n## Drivers and pain points\n")
	for _, t := range r.Themes {
		fmt.Fprintf(&b, "\n### %s\n\n", t.Bank)
		fmt.Fprintf(&b, "- Drivers: %s\n", strings.Join(t.Drivers, ", "))
		fmt.Fprintf(&b, "- Pain points: %s\n", strings.Join(t.PainPoints, ", "))
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n## Charts\n\n")
		for _, c := range r.Charts {
			fmt.Fprintf(&b, "![%s](%s)\n\n", strings.TrimSuffix(c, filepath.Ext(c)), c)
		}
	}
	return b.String()
}

// HTML renders the Markdown report with tables enabled.
func (r Report) HTML() string {
	body := blackfriday.Run([]byte(r.Markdown()), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Bank Review Insights</title></head><body>\n" +
		string(body) + "</body></html>\n"
}

// Write stores report.md and report.html in dir.
func (r Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create insights dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(r.Markdown()), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), []byte(r.HTML()), 0o644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}
