// Package report renders an analysis Sink to a terminal or log file: one
// line per diagnostic, colorized by Kind when the target is a real
// terminal, followed by a humanized one-line summary. Grounded on
// internal/evaluator/builtins_term.go's terminal-capability detection
// (NO_COLOR, TERM=dumb, isatty) and adapted from its per-process
// sync.Once-cached color level to a per-Write decision, since the same
// process may render one report to a terminal and another to a redirected
// file or buffer.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/alloy-rel/core/internal/errs"
)

// color is an ANSI escape sequence, or "" when coloring is disabled.
type color string

const reset color = "\x1b[0m"

func colorFor(k errs.Kind) color {
	switch k {
	case errs.Warning:
		return "\x1b[33m" // yellow
	case errs.Ambiguous:
		return "\x1b[36m" // cyan
	default:
		return "\x1b[31m" // red: Syntax, Type, TypeArity, Fatal, Cancelled
	}
}

// supportsColor reports whether w should receive ANSI escapes: the
// NO_COLOR convention (https://no-color.org/) and TERM=dumb both force
// plain text, and otherwise w must be a real terminal, not a redirected
// file or pipe.
func supportsColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Options controls Write's rendering.
type Options struct {
	// Color forces colorization on or off; nil (the default, via
	// WriteDefault) autodetects from w.
	Color *bool
}

// Write renders every diagnostic in sink, sorted by source position, to w,
// followed by a humanized summary line such as "3 types, 1 warning".
func Write(w io.Writer, sink *errs.Sink, opts Options) error {
	colorize := opts.Color
	if colorize == nil {
		b := supportsColor(w)
		colorize = &b
	}

	diags := sink.Sorted()
	for _, d := range diags {
		if *colorize {
			if _, err := fmt.Fprintf(w, "%s%s: %s: %s%s\n", colorFor(d.Kind), d.Pos, d.Kind, d.Message, reset); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "%s: %s: %s\n", d.Pos, d.Kind, d.Message); err != nil {
				return err
			}
		}
		for _, c := range d.Candidates {
			if _, err := fmt.Fprintf(w, "    candidate: %s\n", c.Description); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, Summary(diags))
	return err
}

// WriteDefault renders sink to os.Stdout, autodetecting color support.
func WriteDefault(sink *errs.Sink) error {
	return Write(os.Stdout, sink, Options{})
}

// Summary returns a one-line, humanized breakdown of diags by Kind, e.g.
// "3 types, 1,204 warnings" for a large warning count, or "no diagnostics"
// when diags is empty.
func Summary(diags []*errs.Diagnostic) string {
	if len(diags) == 0 {
		return "no diagnostics"
	}

	counts := make(map[errs.Kind]int)
	for _, d := range diags {
		counts[d.Kind]++
	}

	kinds := make([]errs.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		n := counts[k]
		noun := k.String()
		if n != 1 {
			noun += "s"
		}
		parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(n)), noun))
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
