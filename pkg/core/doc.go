// Package core defines the shared language of the xmirlint system.
//
// This package contains:
//   - Defect, the single finding every rule reports
//   - Severity, the ordered scale used for filtering and exit codes
//   - RuleInfo, the documentation view of a rule
//   - The error taxonomy (configuration vs. collaborator failures)
//   - Run history entities and the Store interface
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
