// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-openapi/strfmt"
)

func newTable(e env, cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(max(e.height-3, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return t
}

func newViewport(e env) viewport.Model {
	return viewport.New(e.width, max(e.height-1, 3))
}

func resizeTable(t *table.Model, msg contentSizeMsg) {
	t.SetHeight(max(msg.height-3, 3))
}

func resizeViewport(vp *viewport.Model, msg contentSizeMsg) {
	vp.Width = msg.width
	vp.Height = max(msg.height-1, 3)
}

// sparkline draws values as block characters scaled to the largest value.
func sparkline(values []int) string {
	const bars = "▁▂▃▄▅▆▇█"
	blocks := []rune(bars)
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	var b strings.Builder
	for _, v := range values {
		if peak == 0 {
			b.WriteRune(blocks[0])
			continue
		}
		b.WriteRune(blocks[v*(len(blocks)-1)/peak])
	}
	return b.String()
}

func stamp(t *strfmt.DateTime) string {
	if t == nil {
		return "-"
	}
	return time.Time(*t).Local().Format("2006-01-02 15:04")
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
