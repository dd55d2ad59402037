package misc

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/postag"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// VerbInSingularName identifies the rule.
const VerbInSingularName = "test-object-is-verb-in-singular"

// ErrTagCount is returned when a tagger answers with a different number of
// tags than words.
var ErrTagCount = errors.New("tagger returned wrong number of tags")

//go:embed verb_in_singular.md
var verbInSingularMotive string

// NewVerbInSingular creates the rule checking that test object names start
// with a verb in third person singular, classified by tagger.
func NewVerbInSingular(tagger postag.Tagger) lint.Rule {
	return lint.WrapRuleDef(lint.RuleDef{
		Name:     VerbInSingularName,
		Group:    "misc",
		Severity: core.SeverityWarning,
		Motive:   verbInSingularMotive,
		Check: func(ctx context.Context, prog *xmir.Program, _ map[string]any) ([]core.Defect, error) {
			return checkVerbInSingular(ctx, tagger, prog)
		},
	})
}

// candidate is a test object name with its 1-based position.
type candidate struct {
	name string
	line int
	col  int
}

func candidates(prog *xmir.Program) []candidate {
	if !prog.IsTests() {
		return nil
	}
	var out []candidate
	for _, o := range prog.Objects() {
		// Objects without a source line cannot be reported.
		if o.Name == "" || o.Line < 1 {
			continue
		}
		out = append(out, candidate{name: o.Name, line: o.Line, col: o.Pos + 1})
	}
	return out
}

func checkVerbInSingular(ctx context.Context, tagger postag.Tagger, prog *xmir.Program) ([]core.Defect, error) {
	var defects []core.Defect
	for _, c := range candidates(prog) {
		words := Words(c.name)
		if len(words) == 0 {
			continue
		}

		tags, err := tagger.Tag(ctx, words)
		if err != nil {
			return nil, fmt.Errorf("%w: tagging %q: %w", core.ErrCollaborator, c.name, err)
		}
		if len(tags) != len(words) {
			return nil, fmt.Errorf("%w: %w: %d tags for %d words of %q",
				core.ErrCollaborator, ErrTagCount, len(tags), len(words), c.name)
		}

		if text, bad := classify(c, words[0], tags[0]); bad {
			defects = append(defects, core.NewDefect(VerbInSingularName, core.SeverityWarning, c.line, text))
		}
	}
	return defects, nil
}

// classify returns the defect text for a leading word, or false when the
// word is a verb in third person singular.
func classify(c candidate, word, tag string) (string, bool) {
	where := fmt.Sprintf("at the %s line at the %s position", humanize.Ordinal(c.line), humanize.Ordinal(c.col))
	switch {
	case !postag.IsVerb(tag):
		return fmt.Sprintf(
			"The name of the test object '%s' must start with a verb, while '%s' is not a verb (%s), %s",
			c.name, word, tag, where,
		), true
	case !postag.IsSingularVerb(tag):
		return fmt.Sprintf(
			"The name of the test object '%s' must start with a verb in singular, while '%s' is a verb but not singular (%s), %s",
			c.name, word, tag, where,
		), true
	default:
		return "", false
	}
}
