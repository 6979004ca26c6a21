// Package statediff renders snapshots and line diffs between them, for
// tracing and command-line inspection.
package statediff

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Render returns the YAML rendering of a snapshot value.
func Render(v any) (string, error) {
	d, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// Diff renders both snapshots and returns a line diff, "-" for lines
// only in from, "+" for lines only in to.
func Diff(from, to any, colorize bool) (string, error) {
	ftxt, err := Render(from)
	if err != nil {
		return "", err
	}
	ttxt, err := Render(to)
	if err != nil {
		return "", err
	}
	dmp := diffpatch.New()
	fc, tc, lines := dmp.DiffLinesToChars(ftxt, ttxt)
	diffs := dmp.DiffMain(fc, tc, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix, paint := " ", color.WhiteString
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix, paint = "-", color.RedString
		case diffpatch.DiffInsert:
			prefix, paint = "+", color.GreenString
		}
		for _, line := range splitLines(d.Text) {
			out := prefix + " " + line
			if colorize && d.Type != diffpatch.DiffEqual {
				out = paint("%s", out)
			}
			b.WriteString(out)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ColorEnabled reports whether colored output makes sense for f.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
