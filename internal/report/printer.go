package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// PrinterOptions configures a Printer.
type PrinterOptions struct {
	// JSON switches the output to one indented JSON document.
	JSON bool
	// NoColor disables ANSI colours in section headers.
	NoColor bool
}

// Printer writes reports to a console or file.
type Printer struct {
	w       io.Writer
	opts    PrinterOptions
	heading *color.Color
	accent  *color.Color
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts PrinterOptions) *Printer {
	heading := color.New(color.FgCyan, color.Bold)
	accent := color.New(color.FgGreen, color.Bold)
	if opts.NoColor {
		heading.DisableColor()
		accent.DisableColor()
	}
	return &Printer{w: w, opts: opts, heading: heading, accent: accent}
}

// Print writes r in the configured format.
func (p *Printer) Print(r *Report) error {
	if p.opts.JSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	var b strings.Builder
	p.quality(&b, r)
	p.cleaning(&b, r)
	fmt.Fprintf(&b, "%s\n", p.heading.Sprint("Partitions"))
	fmt.Fprintf(&b, "train=%d validation=%d test=%d\n\n", r.Split.Train, r.Split.Validation, r.Split.Test)

	for _, c := range r.Candidates {
		p.candidate(&b, c)
	}

	fmt.Fprintf(&b, "%s %s\n", p.heading.Sprint("Selected model:"), p.accent.Sprint(r.Selected))
	fmt.Fprintf(&b, "%s\n", p.heading.Sprint("Test metrics"))
	scores(&b, r.Test.Precision, r.Test.Recall, r.Test.F1, r.Test.ROCAUC)
	fmt.Fprintf(&b, "\n%s\n%s\n\n", r.Test.Report, r.Test.Confusion)

	if len(r.Importances) > 0 {
		fmt.Fprintf(&b, "%s\n", p.heading.Sprint("Feature importances"))
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, imp := range r.Importances {
			fmt.Fprintf(tw, "%s\t%.6f\n", imp.Feature, imp.Importance)
		}
		_ = tw.Flush()
		b.WriteString("\n")
	}

	if len(r.Stages) > 0 {
		fmt.Fprintf(&b, "%s\n", p.heading.Sprint("Stage timings"))
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, s := range r.Stages {
			fmt.Fprintf(tw, "%s\t%s\t%d rows\n", s.Stage, s.Duration, s.RowsProcessed)
		}
		_ = tw.Flush()
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) quality(b *strings.Builder, r *Report) {
	fmt.Fprintf(b, "%s %s\n", p.heading.Sprint("Run"), r.RunID)
	fmt.Fprintf(b, "%s\n", p.heading.Sprint("Missing values"))
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	for _, n := range r.Quality.Nulls {
		fmt.Fprintf(tw, "%s\t%d\n", n.Column, n.Nulls)
	}
	_ = tw.Flush()
	b.WriteString("\n")

	fmt.Fprintf(b, "%s\n", p.heading.Sprint("Distinct values"))
	for _, d := range r.Quality.Distinct {
		fmt.Fprintf(b, "%s: [%s]\n", d.Column, strings.Join(d.Values, ", "))
	}
	b.WriteString("\n")
}

func (p *Printer) cleaning(b *strings.Builder, r *Report) {
	fmt.Fprintf(b, "%s\n", p.heading.Sprint("Imputation"))
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	for _, f := range r.Imputation.Fills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d filled\n", f.Column, f.Strategy, f.Value, f.Filled)
	}
	_ = tw.Flush()
	fmt.Fprintf(b, "remaining missing values: %d\n\n", r.RemainingNulls)
}

func (p *Printer) candidate(b *strings.Builder, c Candidate) {
	fmt.Fprintf(b, "%s %s\n", p.heading.Sprint("Model:"), c.Family)
	if c.Params != "" {
		fmt.Fprintf(b, "best params: %s (cv precision %.4f over %d points)\n", c.Params, c.CVPrecision, c.GridPoints)
	}
	fmt.Fprintf(b, "Classification Report:\n%s\n", c.Validation.Report)
	fmt.Fprintf(b, "Confusion Matrix:\n%s\n", c.Validation.Confusion)
	scores(b, c.Validation.Precision, c.Validation.Recall, c.Validation.F1, c.Validation.ROCAUC)
	b.WriteString("\n")
}

func scores(b *strings.Builder, precision, recall, f1, auc float64) {
	fmt.Fprintf(b, "Precision: %.4f\nRecall: %.4f\nF1 Score: %.4f\nROC-AUC: %.4f\n", precision, recall, f1, auc)
}
