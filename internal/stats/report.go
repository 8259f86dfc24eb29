package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SCCSeverity classifies the somatic cell count against the cooperative's
// quality tiers
type SCCSeverity string

const (
	SCCNominal SCCSeverity = "nominal"
	SCCCaution SCCSeverity = "caution"
	SCCAlert   SCCSeverity = "alert"
)

// SCC thresholds in thousands of cells per mL. Caution is inclusive on both
// ends: 150 and 185 both classify as caution.
const (
	sccCautionFloor = 150
	sccAlertFloor   = 185
)

// ClassifySCC maps a somatic cell count (in thousands) to its severity tier
func ClassifySCC(scc float64) SCCSeverity {
	switch {
	case scc > sccAlertFloor:
		return SCCAlert
	case scc >= sccCautionFloor:
		return SCCCaution
	default:
		return SCCNominal
	}
}

func sccFlag(severity SCCSeverity) string {
	switch severity {
	case SCCAlert:
		return "🔴"
	case SCCCaution:
		return "🟡"
	default:
		return "🟢"
	}
}

// QualityAverages holds the 7-day volume-weighted quality metrics
type QualityAverages struct {
	Fat     float64
	Protein float64
	// SCC in thousands of cells per mL
	SCC float64
}

// BuildReport renders the fixed-layout daily report text
func BuildReport(date time.Time, two, seven, thirty WindowStats, quality QualityAverages) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily Milk Report - %s\n\n", date.Format("Jan 2, 2006"))

	b.WriteString("PRODUCTION AVERAGES\n")
	fmt.Fprintf(&b, "• 2-Day:   %s lbs\n", formatThousands(two.DailyAverage))
	fmt.Fprintf(&b, "• 7-Day:   %s lbs\n", formatThousands(seven.DailyAverage))
	fmt.Fprintf(&b, "• 30-Day:  %s lbs\n\n", formatThousands(thirty.DailyAverage))

	b.WriteString("QUALITY (7-day avg)\n")
	fmt.Fprintf(&b, "• Fat: %.2f%% | Protein: %.2f%%\n", quality.Fat, quality.Protein)
	fmt.Fprintf(&b, "• SCC: %sk %s\n\n", formatThousands(quality.SCC), sccFlag(ClassifySCC(quality.SCC)))

	b.WriteString("PICKUP ACTIVITY\n")
	fmt.Fprintf(&b, "• Last 2 days: %d pickups (%.2f/day)\n", two.Pickups, two.LoadsPerDay)
	fmt.Fprintf(&b, "• Last 7 days: %d pickups (%.2f/day)", seven.Pickups, seven.LoadsPerDay)

	return b.String()
}

// formatThousands rounds to the nearest integer and groups digits with
// commas for readability in the report body
func formatThousands(value float64) string {
	n := int64(math.Round(value))
	s := strconv.FormatInt(n, 10)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}
