// Package display provides terminal output formatting for ytagent.
package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gauthierbraillon/ytagent/internal/youtube"
)

const (
	maxTitleWidth   = 60
	maxChannelWidth = 30
)

// TerminalFormatter formats videos and credential state for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatVideos renders videos as a numbered table.
func (f *TerminalFormatter) FormatVideos(videos []youtube.VideoSummary) string {
	if len(videos) == 0 {
		return "No videos to display.\n"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Channel", "URL"})
	for i, v := range videos {
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			f.TruncateText(v.Title, maxTitleWidth),
			f.TruncateText(v.ChannelTitle, maxChannelWidth),
			v.URL(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render() + "\n"
}

// FormatAction reports the outcome of a like, comment or subscribe call.
func (f *TerminalFormatter) FormatAction(action, id string) string {
	return fmt.Sprintf("%s: %s\n", action, id)
}

// FormatKeyValues renders ordered pairs as a two-column table.
func (f *TerminalFormatter) FormatKeyValues(pairs [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	for _, p := range pairs {
		tw.AppendRow(table.Row{p[0], p[1]})
	}
	return tw.Render() + "\n"
}

// FormatExpiry describes when an access token expires relative to now.
func (f *TerminalFormatter) FormatExpiry(expiry, now time.Time) string {
	if expiry.IsZero() {
		return "unknown"
	}
	diff := expiry.Sub(now)

	switch {
	case diff <= 0:
		return "expired"
	case diff < time.Minute:
		return "in less than a minute"
	case diff < time.Hour:
		return "in " + pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return "in " + pluralize(int(diff.Hours()), "hour")
	default:
		return expiry.Format("Jan 2, 2006 15:04")
	}
}

// pluralize returns "N unit" or "N units" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
}
