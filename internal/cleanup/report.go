package cleanup

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Summary is the final accounting of one cleanup run.
type Summary struct {
	StartedAt time.Time
	Reports   []StepReport

	// Preserved lists what teardown deliberately left in place.
	Preserved []string
}

// Clean reports whether every step finished without leftovers. Dry-run
// and skipped steps count as clean.
func (s Summary) Clean() bool {
	for _, r := range s.Reports {
		if r.Status == StepFailed || r.Status == StepCompletedWithIssues {
			return false
		}
	}
	return true
}

// IssueSteps returns the names of steps that failed or left resources
// behind, in execution order.
func (s Summary) IssueSteps() []string {
	var names []string
	for _, r := range s.Reports {
		if r.Status == StepFailed || r.Status == StepCompletedWithIssues {
			names = append(names, r.Name)
		}
	}
	return names
}

// Colors matching the provisioning console palette.
var (
	reportColorGreen  = lipgloss.Color("#22c55e")
	reportColorRed    = lipgloss.Color("#ef4444")
	reportColorYellow = lipgloss.Color("#eab308")
	reportColorDim    = lipgloss.Color("#6b7280")
	reportColorWhite  = lipgloss.Color("#f9fafb")
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(reportColorWhite)

	reportDimStyle = lipgloss.NewStyle().
			Foreground(reportColorDim)

	reportGreenStyle = lipgloss.NewStyle().
				Foreground(reportColorGreen)

	reportYellowStyle = lipgloss.NewStyle().
				Foreground(reportColorYellow)

	reportRedStyle = lipgloss.NewStyle().
			Foreground(reportColorRed)
)

// RenderSummary produces the styled end-of-run report.
func RenderSummary(summary Summary) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(reportTitleStyle.Render("  cleanup summary"))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("═", 40)))
	b.WriteString("\n\n")

	for _, report := range summary.Reports {
		b.WriteString(fmt.Sprintf("    %s %-16s %s\n",
			statusStyle(report.Status).Render(statusGlyph(report.Status)),
			report.Name,
			reportDimStyle.Render(report.Detail)))
	}

	if len(summary.Preserved) > 0 {
		b.WriteString("\n")
		b.WriteString(reportDimStyle.Render("  preserved: " + strings.Join(summary.Preserved, ", ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if summary.Clean() {
		b.WriteString(reportGreenStyle.Render("  fully clean"))
	} else {
		b.WriteString(reportYellowStyle.Render(fmt.Sprintf(
			"  partially clean, retry recommended for: %s",
			strings.Join(summary.IssueSteps(), ", "))))
	}
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render(fmt.Sprintf("  finished in %v",
		time.Since(summary.StartedAt).Round(time.Second))))
	b.WriteString("\n")

	return b.String()
}

func statusGlyph(status StepStatus) string {
	switch status {
	case StepCompleted:
		return "✓"
	case StepCompletedWithIssues:
		return "!"
	case StepSkippedNotFound:
		return "-"
	case StepDryRun:
		return "·"
	case StepFailed:
		return "✗"
	default:
		return "?"
	}
}

func statusStyle(status StepStatus) lipgloss.Style {
	switch status {
	case StepCompleted, StepSkippedNotFound, StepDryRun:
		return reportGreenStyle
	case StepCompletedWithIssues:
		return reportYellowStyle
	case StepFailed:
		return reportRedStyle
	default:
		return reportDimStyle
	}
}
