// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render prints backend records for the CLI as aligned tables,
// JSON or YAML. Table output is colored only when writing to a terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendscope/internal/present"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml; empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML, "yml":
		if f == "yml" {
			return FormatYAML, nil
		}
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: use table, json or yaml", s)
}

// Printer writes records in one format.
type Printer struct {
	w      io.Writer
	format Format
	tones  map[present.Tone]*color.Color
	bold   *color.Color
	faint  *color.Color
}

// New returns a Printer for w. Colors are on only when w is a terminal.
func New(w io.Writer, format Format) *Printer {
	return NewWithColor(w, format, isTerminal(w))
}

// NewWithColor forces colors on or off.
func NewWithColor(w io.Writer, format Format, colored bool) *Printer {
	p := &Printer{
		w:      w,
		format: format,
		tones: map[present.Tone]*color.Color{
			present.TonePositive:       color.New(color.FgGreen),
			present.ToneStrongPositive: color.New(color.FgGreen, color.Bold),
			present.ToneNegative:       color.New(color.FgRed),
			present.ToneStrongNegative: color.New(color.FgRed, color.Bold),
			present.ToneWarning:        color.New(color.FgYellow),
			present.ToneMuted:          color.New(color.FgHiBlack),
		},
		bold:  color.New(color.Bold),
		faint: color.New(color.FgHiBlack),
	}
	all := []*color.Color{p.bold, p.faint}
	for _, c := range p.tones {
		all = append(all, c)
	}
	for _, c := range all {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format reports the printer's encoding.
func (p *Printer) Format() Format { return p.format }

// encode writes v as JSON or YAML and reports whether it did.
func (p *Printer) encode(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encoding YAML: %w", err)
		}
		return true, enc.Close()
	}
	return false, nil
}

// Encode writes v as JSON or YAML. Table format has no generic layout for
// arbitrary values, so it prints JSON.
func (p *Printer) Encode(v any) error {
	if ok, err := p.encode(v); ok {
		return err
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Message prints a plain line, in every format, to the printer's writer.
func (p *Printer) Message(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) tone(t present.Tone, padded string) string {
	if c, ok := p.tones[t]; ok {
		return c.Sprint(padded)
	}
	return padded
}

func (p *Printer) header(format string, cols ...any) {
	line := fmt.Sprintf(format, cols...)
	fmt.Fprintln(p.w, p.bold.Sprint(line))
	fmt.Fprintln(p.w, strings.Repeat("-", utf8.RuneCountInString(line)))
}

func (p *Printer) footer(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.faint.Sprint(s))
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// pad left-aligns s in a column of width n runes.
func pad(s string, n int) string {
	if k := utf8.RuneCountInString(s); k < n {
		return s + strings.Repeat(" ", n-k)
	}
	return s
}
