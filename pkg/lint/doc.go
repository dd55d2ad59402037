// Package lint provides the rule contract, the rule catalog and the analyzer
// that evaluates a catalog against one XMIR program.
//
// # Rules
//
// Every rule implements Rule. Two variants share the contract:
//
//  1. Pattern rules (pkg/lint/pattern): a script compiled by an external
//     runtime matches the program tree; each match becomes a defect.
//  2. Procedural rules: arbitrary Go code, usually declared as a RuleDef and
//     adapted with WrapRuleDef.
//
// The analyzer never asks which variant it is running.
//
// # Rule Registration
//
// Procedural rules without dependencies register themselves from init():
//
//	func init() {
//		lint.Register(lint.WrapRuleDef(AsciiOnly))
//	}
//
// and are picked up by importing the package for its side effects:
//
//	import _ "github.com/leapstack-labs/xmirlint/pkg/lint/rules/comments"
//
// # Catalog
//
// A Catalog is built lazily from one or more sources and then shared:
//
//	catalog := lint.NewCatalog(lint.Sources(
//		patternSource,
//		lint.RegisteredRules,
//		lint.Static(misc.NewVerbInSingular(tagger)),
//	))
//
// Concurrent first callers share a single build. A failed build is not
// cached: every waiter of that build receives the error and the next call
// builds again.
//
// # Configuration
//
// Use Config to control which rules run, their severity and their options:
//
//	config := lint.NewConfig()
//	config.Disable("ascii-only")
//	config.SetSeverity("alias-too-long", core.SeverityCritical)
//	config.SetRuleOptions("alias-too-long", map[string]any{"max_parts": 3})
//
// # Analysis
//
//	analyzer := lint.NewAnalyzer(catalog, lint.AnalyzerOptions{Config: config, Version: "1.2.0"})
//	report, err := analyzer.Analyze(ctx, program)
//
// err is non-nil only for fatal problems (configuration, cancellation). A rule
// that fails is recorded in report.Failures and the remaining rules still run.
package lint
