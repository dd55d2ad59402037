package lint

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// RuleFailure records a rule that could not check the program.
// Its defects, if any, are not in the report.
type RuleFailure struct {
	Rule string `json:"rule"`
	Err  error  `json:"-"`
}

func (f RuleFailure) Error() string {
	return fmt.Sprintf("rule %s failed: %v", f.Rule, f.Err)
}

// Unwrap returns the underlying error.
func (f RuleFailure) Unwrap() error {
	return f.Err
}

// MarshalText renders the failure as its message.
func (f RuleFailure) MarshalText() ([]byte, error) {
	return []byte(f.Error()), nil
}

// Report is the result of analyzing one program.
type Report struct {
	Program  string        `json:"program,omitempty"`
	Version  string        `json:"version,omitempty"`
	Defects  []core.Defect `json:"defects"`
	Failures []RuleFailure `json:"failures,omitempty"`
}

// Clean reports whether the program has no defects and every rule ran.
func (r *Report) Clean() bool {
	return len(r.Defects) == 0 && len(r.Failures) == 0
}

// Failed reports whether at least one rule could not check the program.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Count returns the number of defects at least as severe as minimum.
func (r *Report) Count(minimum core.Severity) int {
	n := 0
	for _, d := range r.Defects {
		if d.Severity.AtLeast(minimum) {
			n++
		}
	}
	return n
}

// Filter returns a copy of the report keeping defects at least as severe
// as minimum. Failures are kept.
func (r *Report) Filter(minimum core.Severity) *Report {
	out := &Report{
		Program:  r.Program,
		Version:  r.Version,
		Defects:  make([]core.Defect, 0, len(r.Defects)),
		Failures: r.Failures,
	}
	for _, d := range r.Defects {
		if d.Severity.AtLeast(minimum) {
			out.Defects = append(out.Defects, d)
		}
	}
	return out
}

// Err joins the rule failures, or returns nil.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}
