// Package rules bundles the procedural lint rules for XMIR programs.
//
// Rules are organized by group:
//   - comments: rules about comment text (ascii-only)
//   - misc: rules needing external collaborators (test-object-is-verb-in-singular)
//
// Rules without collaborators register themselves with the global lint
// registry. Import this package with a blank identifier to pull them in:
//
//	import _ "github.com/leapstack-labs/xmirlint/pkg/lint/rules"
//
// Rules in misc take their collaborators as constructor arguments and must be
// added to a catalog explicitly:
//
//	lint.Static(misc.NewVerbInSingular(tagger))
package rules
