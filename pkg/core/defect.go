package core

import (
	"errors"
	"fmt"
)

// FileScope is the line reported by defects that concern the whole program
// rather than one construct. Rules using it say so in their motive.
const FileScope = 0

// Defect is a single finding reported by a rule.
//
// A Defect is built by the rule the moment a violation is detected and is
// never changed afterwards. Version is empty until the analyzer attaches the
// engine version to the finished report.
type Defect struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Text     string   `json:"text"`
	Version  string   `json:"version,omitempty"`
}

// NewDefect creates a defect without version information.
func NewDefect(rule string, severity Severity, line int, text string) Defect {
	return Defect{
		Rule:     rule,
		Severity: severity,
		Line:     line,
		Text:     text,
	}
}

// String renders the defect as "[rule SEVERITY]:line text".
func (d Defect) String() string {
	return fmt.Sprintf("[%s %s]:%d %s", d.Rule, d.Severity, d.Line, d.Text)
}

// WithVersion returns a copy of the defect stamped with the engine version.
func (d Defect) WithVersion(version string) Defect {
	d.Version = version
	return d
}

// Equal compares rule, severity, line and text. Version is ignored since it
// varies by build, not by finding.
func (d Defect) Equal(other Defect) bool {
	return d.Rule == other.Rule &&
		d.Severity == other.Severity &&
		d.Line == other.Line &&
		d.Text == other.Text
}

// Validate checks the defect invariants.
func (d Defect) Validate() error {
	var errs []error
	if d.Rule == "" {
		errs = append(errs, errors.New("rule is empty"))
	}
	if d.Text == "" {
		errs = append(errs, errors.New("text is empty"))
	}
	if !d.Severity.Valid() {
		errs = append(errs, fmt.Errorf("severity %d is unknown", int(d.Severity)))
	}
	if d.Line < FileScope {
		errs = append(errs, fmt.Errorf("line %d is negative", d.Line))
	}
	return errors.Join(errs...)
}
