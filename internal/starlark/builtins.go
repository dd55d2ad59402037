package starlark

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/dustin/go-humanize"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// matchConstructor tags the structs produced by match().
const matchConstructor = starlark.String("match")

// regexCache holds compiled expressions shared by all scripts.
var regexCache sync.Map // string -> *regexp.Regexp

// Predeclared returns the builtins available to every pattern script:
//
//	match(line, text, severity="")  one finding
//	matches(pattern, s)             regular expression search
//	ordinal(n)                      "1st", "2nd", ...
//	struct(**kwargs)                plain record
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"match":   starlark.NewBuiltin("match", builtinMatch),
		"matches": starlark.NewBuiltin("matches", builtinMatches),
		"ordinal": starlark.NewBuiltin("ordinal", builtinOrdinal),
		"struct":  starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

func builtinMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		line     int
		text     string
		severity string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "line", &line, "text", &text, "severity?", &severity); err != nil {
		return nil, err
	}
	if line < 0 {
		return nil, fmt.Errorf("%s: line %d is negative", b.Name(), line)
	}
	if text == "" {
		return nil, fmt.Errorf("%s: text is empty", b.Name())
	}
	return starlarkstruct.FromStringDict(matchConstructor, starlark.StringDict{
		"line":     starlark.MakeInt(line),
		"text":     starlark.String(text),
		"severity": starlark.String(severity),
	}), nil
}

func builtinMatches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &pattern, &s); err != nil {
		return nil, err
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Bool(re.MatchString(s)), nil
}

func builtinOrdinal(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &n); err != nil {
		return nil, err
	}
	return starlark.String(humanize.Ordinal(n)), nil
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}
