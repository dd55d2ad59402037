package comments

import (
	"context"
	_ "embed"
	"fmt"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

func init() {
	lint.Register(lint.WrapRuleDef(AsciiOnly))
}

//go:embed ascii_only.md
var asciiOnlyMotive string

const (
	asciiOnlyName     = "ascii-only"
	asciiOnlySeverity = core.SeverityWarning
)

// AsciiOnly flags the first non-ASCII character of every comment.
var AsciiOnly = lint.RuleDef{
	Name:     asciiOnlyName,
	Group:    "comments",
	Severity: asciiOnlySeverity,
	Motive:   asciiOnlyMotive,
	Check:    checkAsciiOnly,
}

func checkAsciiOnly(ctx context.Context, prog *xmir.Program, _ map[string]any) ([]core.Defect, error) {
	var defects []core.Defect
	for _, c := range prog.Comments() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, line, col, ok := firstNonASCII(c.Text)
		if !ok {
			continue
		}
		at := c.Line + line
		defects = append(defects, core.NewDefect(
			asciiOnlyName,
			asciiOnlySeverity,
			at,
			fmt.Sprintf(
				"Only ASCII characters are allowed in comments, while '%c' is used at the %s line at the %s position",
				r, humanize.Ordinal(at), humanize.Ordinal(col),
			),
		))
	}
	return defects, nil
}

// firstNonASCII returns the first rune above 0x7F, the number of line
// breaks before it and its 1-based rune column within its line.
func firstNonASCII(text string) (r rune, line, col int, ok bool) {
	col = 1
	for _, r := range text {
		switch {
		case r == '\n':
			line++
			col = 1
			continue
		case r >= utf8.RuneSelf:
			return r, line, col, true
		}
		col++
	}
	return 0, 0, 0, false
}
