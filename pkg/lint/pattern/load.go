package pattern

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
)

// Resource tree layout.
const (
	PatternsDir = "patterns"
	MotivesDir  = "motives"
	Ext         = ".star"
)

// Header holds the settings declared in a script's leading comments.
type Header struct {
	Severity core.Severity
	Options  []string
}

// ParseHeader reads "# key: value" lines at the top of a script. Parsing
// stops at the first line that is not a comment. The severity defaults to
// warning.
func ParseHeader(src []byte) (Header, error) {
	h := Header{Severity: core.SeverityWarning}
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "severity":
			sev, ok := core.ParseSeverity(value)
			if !ok {
				return h, fmt.Errorf("unknown severity %q", value)
			}
			h.Severity = sev
		case "options":
			for _, opt := range strings.Split(value, ",") {
				if opt = strings.TrimSpace(opt); opt != "" {
					h.Options = append(h.Options, opt)
				}
			}
		}
	}
	return h, sc.Err()
}

// Load compiles every script under patterns/ with rt and pairs it with its
// motive. Any malformed or incomplete resource aborts the load with a
// configuration error.
func Load(fsys fs.FS, rt Runtime) ([]lint.Rule, error) {
	var rules []lint.Rule
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, PatternsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != Ext {
			return nil
		}

		rel := strings.TrimPrefix(p, PatternsDir+"/")
		group, file, ok := strings.Cut(rel, "/")
		if !ok || strings.Contains(file, "/") {
			return core.NewConfigError(rel, errors.New("pattern must live at patterns/<group>/<name>"+Ext))
		}
		name := strings.TrimSuffix(file, Ext)

		if prev, dup := seen[name]; dup {
			return core.NewConfigError(name, fmt.Errorf("defined by both %s and %s", prev, p))
		}
		seen[name] = p

		rule, err := loadRule(fsys, rt, group, name, p)
		if err != nil {
			return core.NewConfigError(name, err)
		}
		rules = append(rules, rule)
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading patterns: %w", core.ErrConfiguration, err)
	}
	return rules, nil
}

func loadRule(fsys fs.FS, rt Runtime, group, name, scriptPath string) (*Rule, error) {
	src, err := fs.ReadFile(fsys, scriptPath)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}

	motivePath := path.Join(MotivesDir, group, name+".md")
	motive, err := fs.ReadFile(fsys, motivePath)
	if err != nil {
		return nil, fmt.Errorf("missing motive %s: %w", motivePath, err)
	}
	if len(bytes.TrimSpace(motive)) == 0 {
		return nil, fmt.Errorf("empty motive %s", motivePath)
	}

	matcher, err := rt.Compile(scriptPath, src)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return NewRule(name, group, header.Severity, string(motive), matcher, header.Options...), nil
}

// Source returns a catalog source loading patterns from fsys.
func Source(fsys fs.FS, rt Runtime) lint.Source {
	return func(context.Context) ([]lint.Rule, error) {
		return Load(fsys, rt)
	}
}
