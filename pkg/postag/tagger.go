// Package postag assigns part-of-speech tags to word sequences.
//
// Tags follow the Penn Treebank tag set. The Tagger interface is the only
// thing rules depend on; the lexicon tagger, the HTTP tagger and the cache
// are interchangeable implementations of it.
package postag

import (
	"context"
	"errors"
	"strings"
)

// Penn Treebank tags produced by the taggers in this package.
const (
	CD   = "CD"   // cardinal number
	DT   = "DT"   // determiner
	IN   = "IN"   // preposition or subordinating conjunction
	JJ   = "JJ"   // adjective
	NN   = "NN"   // noun, singular or mass
	NNS  = "NNS"  // noun, plural
	PRP  = "PRP"  // personal pronoun
	RB   = "RB"   // adverb
	VB   = "VB"   // verb, base form
	VBD  = "VBD"  // verb, past tense
	VBG  = "VBG"  // verb, gerund or present participle
	VBN  = "VBN"  // verb, past participle
	VBP  = "VBP"  // verb, non-3rd person singular present
	VBZ  = "VBZ"  // verb, 3rd person singular present
	UNKN = "UNKN" // nothing known about the word
)

var (
	// ErrUnavailable is returned when the tagging service cannot produce an
	// answer: unreachable model, transport failure, malformed response.
	ErrUnavailable = errors.New("part-of-speech tagger unavailable")

	// ErrEmptyInput is returned when asked to tag zero words.
	ErrEmptyInput = errors.New("no words to tag")
)

// Tagger assigns one tag per word. Implementations may block on I/O and
// must honour ctx. The returned slice has exactly len(words) entries.
type Tagger interface {
	Tag(ctx context.Context, words []string) ([]string, error)
}

// TaggerFunc adapts a function to the Tagger interface.
type TaggerFunc func(ctx context.Context, words []string) ([]string, error)

// Tag calls f.
func (f TaggerFunc) Tag(ctx context.Context, words []string) ([]string, error) {
	return f(ctx, words)
}

// IsVerb reports whether the tag denotes any verb form.
func IsVerb(tag string) bool {
	return strings.HasPrefix(tag, "VB")
}

// IsSingularVerb reports whether the tag is a third person singular
// present verb, e.g. "reads".
func IsSingularVerb(tag string) bool {
	return tag == VBZ
}
