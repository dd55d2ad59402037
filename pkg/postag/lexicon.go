package postag

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon is the word list the rule-based tagger works from.
type Lexicon struct {
	// Verbs lists base forms. Regular inflections are derived.
	Verbs []string `yaml:"verbs"`
	// Irregular maps a base form to its third person singular form when
	// the regular spelling rules do not apply.
	Irregular    map[string]string `yaml:"irregular"`
	Nouns        []string          `yaml:"nouns"`
	Adjectives   []string          `yaml:"adjectives"`
	Adverbs      []string          `yaml:"adverbs"`
	Determiners  []string          `yaml:"determiners"`
	Prepositions []string          `yaml:"prepositions"`
	Pronouns     []string          `yaml:"pronouns"`
}

// ParseLexicon decodes a YAML lexicon.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if len(lex.Verbs) == 0 {
		return nil, fmt.Errorf("lexicon has no verbs")
	}
	return &lex, nil
}

// DefaultLexicon returns the lexicon embedded in the binary.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is broken: %v", err))
	}
	return lex
}

// LexiconTagger tags words from a Lexicon using suffix rules for unknown
// words and a small set of contextual rules for words that are both nouns
// and verbs. It needs no network and is deterministic.
type LexiconTagger struct {
	tags map[string]map[string]bool // word -> candidate tags
}

// NewLexiconTagger indexes the lexicon for tagging.
func NewLexiconTagger(lex *Lexicon) *LexiconTagger {
	t := &LexiconTagger{
		tags: make(map[string]map[string]bool),
	}
	for _, base := range lex.Verbs {
		base = strings.ToLower(base)
		t.add(base, VB)
		t.add(base, VBP)
		third, ok := lex.Irregular[base]
		if !ok {
			third = ThirdPerson(base)
		}
		t.add(third, VBZ)
		t.add(pastTense(base), VBD)
		t.add(pastTense(base), VBN)
		t.add(gerund(base), VBG)
	}
	for _, n := range lex.Nouns {
		n = strings.ToLower(n)
		t.add(n, NN)
		t.add(plural(n), NNS)
	}
	for _, w := range lex.Adjectives {
		t.add(strings.ToLower(w), JJ)
	}
	for _, w := range lex.Adverbs {
		t.add(strings.ToLower(w), RB)
	}
	for _, w := range lex.Determiners {
		t.add(strings.ToLower(w), DT)
	}
	for _, w := range lex.Prepositions {
		t.add(strings.ToLower(w), IN)
	}
	for _, w := range lex.Pronouns {
		t.add(strings.ToLower(w), PRP)
	}
	return t
}

func (t *LexiconTagger) add(word, tag string) {
	set, ok := t.tags[word]
	if !ok {
		set = make(map[string]bool)
		t.tags[word] = set
	}
	set[tag] = true
}

// Tag implements Tagger.
func (t *LexiconTagger) Tag(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A Caser is stateful, so each call gets its own.
	lower := cases.Lower(language.English)
	cands := make([]map[string]bool, len(words))
	for i, w := range words {
		cands[i] = t.candidates(lower.String(w))
	}

	tags := make([]string, len(words))
	for i := range words {
		var next map[string]bool
		if i+1 < len(words) {
			next = cands[i+1]
		}
		if i == 0 {
			tags[i] = leading(cands[i], next)
		} else {
			tags[i] = following(cands[i])
		}
	}
	return tags, nil
}

// candidates returns the possible tags of a word, falling back to suffix
// heuristics for words missing from the lexicon.
func (t *LexiconTagger) candidates(word string) map[string]bool {
	if set, ok := t.tags[word]; ok {
		return set
	}
	if word != "" && strings.IndexFunc(word, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return map[string]bool{CD: true}
	}
	switch {
	case strings.HasSuffix(word, "ing") && len(word) > 4:
		return map[string]bool{VBG: true}
	case strings.HasSuffix(word, "ed") && len(word) > 3:
		return map[string]bool{VBD: true, VBN: true}
	case strings.HasSuffix(word, "ly") && len(word) > 3:
		return map[string]bool{RB: true}
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 2:
		return map[string]bool{NNS: true}
	default:
		return map[string]bool{NN: true}
	}
}

// leading picks the tag of the first word. Identifiers usually open with an
// action, so verb readings win unless the next word shows the first one is
// the subject of a sentence ("tests pass", "file works").
func leading(cur, next map[string]bool) string {
	nextIsVerb := next[VBZ] || next[VBP] || next[VB]
	nextIsNominal := next[NN] || next[NNS] || next[DT] || next[JJ] || next[PRP] || next[CD]

	switch {
	case cur[VBZ] && cur[NNS]:
		// "tests pass" vs "returns value"
		if nextIsVerb && !nextIsNominal && !next[VBZ] {
			return NNS
		}
		return VBZ
	case cur[VB] && cur[NN]:
		// "file works" vs "parse file"
		if next[VBZ] && !nextIsNominal {
			return NN
		}
		return VB
	}
	for _, tag := range []string{VBZ, VB, VBD, VBG, VBN, NN, NNS, JJ, RB, DT, IN, PRP, CD} {
		if cur[tag] {
			return tag
		}
	}
	return UNKN
}

// following picks the tag of a non-leading word, preferring nominal readings.
func following(cur map[string]bool) string {
	for _, tag := range []string{NN, NNS, JJ, DT, IN, PRP, CD, RB, VBZ, VBG, VBD, VBN, VBP, VB} {
		if cur[tag] {
			return tag
		}
	}
	return UNKN
}

// ThirdPerson derives the regular third person singular form of a verb.
func ThirdPerson(base string) string {
	switch {
	case strings.HasSuffix(base, "s"), strings.HasSuffix(base, "x"),
		strings.HasSuffix(base, "z"), strings.HasSuffix(base, "ch"),
		strings.HasSuffix(base, "sh"), strings.HasSuffix(base, "o"):
		return base + "es"
	case consonantY(base):
		return base[:len(base)-1] + "ies"
	default:
		return base + "s"
	}
}

func plural(noun string) string {
	return ThirdPerson(noun)
}

func pastTense(base string) string {
	switch {
	case strings.HasSuffix(base, "e"):
		return base + "d"
	case consonantY(base):
		return base[:len(base)-1] + "ied"
	default:
		return base + "ed"
	}
}

func gerund(base string) string {
	if strings.HasSuffix(base, "e") && !strings.HasSuffix(base, "ee") && len(base) > 2 {
		return base[:len(base)-1] + "ing"
	}
	return base + "ing"
}

func consonantY(w string) bool {
	if len(w) < 2 || w[len(w)-1] != 'y' {
		return false
	}
	return !strings.ContainsRune("aeiou", rune(w[len(w)-2]))
}
