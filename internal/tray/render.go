package tray

import (
	"fmt"
	"math"

	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/weather"
)

// LineKind distinguishes the three kinds of menu entries.
type LineKind int

const (
	LineInfo LineKind = iota
	LineSeparator
	LineAction
)

// Action identifies what an actionable menu entry triggers.
type Action int

const (
	ActionNone Action = iota
	ActionRefresh
	ActionPreferences
	ActionQuit
)

// Line is one rendered menu entry. The menu is assembled as an ordered
// list of lines so the conditional layout can be tested without a live
// tray.
type Line struct {
	Kind   LineKind
	Label  string
	Action Action
}

func info(label string) Line {
	return Line{Kind: LineInfo, Label: label}
}

func separator() Line {
	return Line{Kind: LineSeparator}
}

func action(label string, a Action) Line {
	return Line{Kind: LineAction, Label: label, Action: a}
}

// FormatTitle renders the compact tray title. Without a usable
// temperature it is a fixed placeholder; otherwise both units, rounded,
// ordered per the user's preference.
func FormatTitle(snap *weather.Snapshot, order string) string {
	if !snap.HasTemp() {
		return "--°C / --°F"
	}
	return formatTemp(*snap.TempC, order)
}

func formatTemp(c float64, order string) string {
	f := c*9/5 + 32
	cStr := fmt.Sprintf("%d°C", int(math.Round(c)))
	fStr := fmt.Sprintf("%d°F", int(math.Round(f)))
	if order == "FC" {
		return fStr + " / " + cStr
	}
	return cStr + " / " + fStr
}

// BuildMenu assembles the dropdown as an ordered list of lines. Each
// data-backed line is included only when its backing field is present.
func BuildMenu(snap *weather.Snapshot, online bool, st settings.Settings) []Line {
	var lines []Line

	if snap != nil && snap.City != "" {
		lines = append(lines, info(snap.City))
	}
	if snap != nil && snap.Condition != "" {
		lines = append(lines, info(snap.Condition))
	}
	if len(lines) > 0 {
		lines = append(lines, separator())
	}

	if snap != nil && snap.FeelsLikeC != nil {
		lines = append(lines, info("Feels like "+formatTemp(*snap.FeelsLikeC, st.TempOrder)))
	}
	if snap != nil && snap.HighC != nil && snap.LowC != nil {
		lines = append(lines,
			info("↑ High   "+formatTemp(*snap.HighC, st.TempOrder)),
			info("↓ Low    "+formatTemp(*snap.LowC, st.TempOrder)),
		)
	}

	if st.ShowTomorrow && snap != nil && snap.TomorrowHighC != nil && snap.TomorrowLowC != nil {
		lines = append(lines,
			separator(),
			info("Tomorrow"),
			info("↑ High   "+formatTemp(*snap.TomorrowHighC, st.TempOrder)),
			info("↓ Low    "+formatTemp(*snap.TomorrowLowC, st.TempOrder)),
		)
	}

	if snap != nil && (snap.FeelsLikeC != nil || snap.HighC != nil) {
		lines = append(lines, separator())
	}

	if snap != nil && !snap.UpdatedAt.IsZero() {
		suffix := ""
		if !online {
			suffix = " (Offline)"
		}
		lines = append(lines, info("Updated: "+snap.UpdatedAt.Local().Format("3:04 PM")+suffix))
	} else if !snap.HasTemp() {
		lines = append(lines, info("No weather data available"))
	}

	lines = append(lines,
		separator(),
		action("Refresh Now", ActionRefresh),
		action("Preferences...", ActionPreferences),
		separator(),
		action("Quit", ActionQuit),
	)

	return lines
}
