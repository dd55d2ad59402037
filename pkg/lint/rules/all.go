package rules

// Import all rule subpackages to register them with the global registry.
import (
	// Procedural rules without collaborators register via init()
	_ "github.com/leapstack-labs/xmirlint/pkg/lint/rules/comments"
)
