package notifier

import (
	"fmt"
	"strings"

	"LynchScreen/internal/model"
)

var bucketTitles = map[model.Bucket]string{
	model.BucketValue:    "Best Value",
	model.BucketGrowth:   "High Growth",
	model.BucketBalanced: "Balanced",
}

// FormatRunReport formats the portfolio snapshot and delta into a Slack
// message.
func FormatRunReport(snap *model.PortfolioSnapshot, delta model.HistoryDelta) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*LynchScreen Weekly Portfolio* | %s\n\n", snap.RunAt.Format("2006-01-02")))

	schedules := make(map[string]model.EntrySchedule, len(snap.Schedules))
	for _, s := range snap.Schedules {
		schedules[s.Ticker] = s
	}

	for _, bucket := range snap.Buckets {
		b.WriteString(fmt.Sprintf("*%s* (target %.0f%%, achieved %.0f%%)\n",
			bucketTitles[bucket.Name], bucket.TargetPct, bucket.AchievedPct))

		if len(bucket.Positions) == 0 {
			b.WriteString("  no qualifying candidates\n\n")
			continue
		}
		for _, p := range bucket.Positions {
			link := fmt.Sprintf("https://finance.yahoo.com/quote/%s", p.Ticker)
			b.WriteString(fmt.Sprintf("  • *%s* <%s|chart> | %s\n", p.Ticker, link, p.Name))
			b.WriteString(fmt.Sprintf("    PEG %.2f | growth %.1f%% | P/E %.1f | score %.3f | sources %d/%d\n",
				p.PEG, p.GrowthPct, p.PE, p.Score, p.Confidence, p.Attempted))
			if s, ok := schedules[p.Ticker]; ok {
				b.WriteString(fmt.Sprintf("    entry: %s\n", formatStages(s.Stages)))
			}
			if p.Disagreement {
				b.WriteString("    ⚠ sources disagreed, figures are the cross-source median\n")
			}
		}
		if sf := bucket.ShortfallPct(); sf > 0 {
			b.WriteString(fmt.Sprintf("  ⚠ %.0f%% of target unfilled\n", sf))
		}
		b.WriteString("\n")
	}

	b.WriteString("*Changes since last run*\n")
	b.WriteString(fmt.Sprintf("  new: %s\n", formatTickers(delta.Added)))
	b.WriteString(fmt.Sprintf("  dropped: %s\n", formatTickers(delta.Removed)))
	b.WriteString(fmt.Sprintf("  retained: %s\n", formatTickers(delta.Retained)))

	return b.String()
}

func formatStages(stages []model.EntryStage) string {
	parts := make([]string, len(stages))
	for i, st := range stages {
		parts[i] = fmt.Sprintf("wk%d %.0f%%", st.Week, st.Percent)
	}
	return strings.Join(parts, " → ")
}

func formatTickers(tickers []string) string {
	if len(tickers) == 0 {
		return "none"
	}
	return strings.Join(tickers, ", ")
}
