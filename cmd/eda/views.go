package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"eda/internal/analysis"
	"eda/internal/session"
)

// printViews renders every view as an aligned text table.
func printViews(out io.Writer, sess *session.Session) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	ov, err := sess.Overview()
	if err != nil {
		return err
	}
	section(tw, "Overview")
	fmt.Fprintf(tw, "records\t%d\n", ov.Total)
	fmt.Fprintf(tw, "train\t%d\n", ov.Train)
	fmt.Fprintf(tw, "test\t%d\n", ov.Test)
	fmt.Fprintf(tw, "columns\t%s\n", strings.Join(ov.Columns, ", "))

	missing, err := sess.Missing()
	if err != nil {
		return err
	}
	section(tw, "Missing values")
	fmt.Fprintln(tw, "column\tmissing\tpercent")
	for _, m := range missing {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", m.Column, m.Count, m.Percent)
	}

	numeric, err := sess.Numeric()
	if err != nil {
		return err
	}
	section(tw, "Numeric features")
	fmt.Fprintln(tw, "feature\tcount\tmean\tmin\tmax")
	for _, n := range numeric {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", n.Feature, n.Count, n.Mean, n.Min, n.Max)
	}

	dist, err := sess.Distribution("")
	switch {
	case errors.Is(err, analysis.ErrUnknownColumn):
		section(tw, "Distribution")
		fmt.Fprintf(tw, "%s\n", err)
	case err != nil:
		return err
	default:
		section(tw, "Distribution of "+dist.Feature)
		fmt.Fprintln(tw, "value\tcount")
		for _, b := range dist.Buckets {
			fmt.Fprintf(tw, "%s\t%d\n", b.Value, b.Count)
		}
		if dist.Missing > 0 {
			fmt.Fprintf(tw, "(missing)\t%d\n", dist.Missing)
		}
	}

	target, err := sess.Target()
	if err != nil {
		return err
	}
	section(tw, "Target "+target.Field)
	if !target.Available {
		fmt.Fprintln(tw, "no train records carry the target")
	} else {
		fmt.Fprintln(tw, "value\tcount")
		for _, b := range target.Buckets() {
			fmt.Fprintf(tw, "%s\t%d\n", b.Value, b.Count)
		}
		fmt.Fprintf(tw, "positive rate\t%s%%\n", target.Rate)
		if target.Other > 0 {
			fmt.Fprintf(tw, "other values\t%d\n", target.Other)
		}

		rates, err := sess.TargetRate("")
		if err == nil && len(rates) > 0 {
			section(tw, "Target rate by "+sess.Schema().ColorFeature)
			fmt.Fprintln(tw, "value\tcount\tpositives\trate")
			for _, r := range rates {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s%%\n", r.Value, r.Count, r.Positives, r.Rate)
			}
		}
	}

	return tw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}
