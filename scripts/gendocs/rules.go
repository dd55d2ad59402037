package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"critical": "Defects that make the program ambiguous or unusable.",
	"errors":   "Defects that are almost certainly mistakes.",
	"metas":    "Malformed `+meta` declarations.",
	"comments": "Problems in program comments.",
	"misc":     "Naming conventions checked with a part-of-speech tagger.",
}

// generateRuleDocs writes an index and one page per rule group.
func generateRuleDocs(ctx context.Context, outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	eng, err := engine.New(engine.Config{})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	rules, err := eng.Rules(ctx)
	if err != nil {
		return err
	}
	grouped := make(map[string][]core.RuleInfo)
	var groups []string
	for _, r := range rules {
		if _, ok := grouped[r.Group]; !ok {
			groups = append(groups, r.Group)
		}
		grouped[r.Group] = append(grouped[r.Group], r)
	}

	if err := generateRuleIndex(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, group := range groups {
		if err := generateGroupPage(outDir, group, grouped[group]); err != nil {
			return err
		}
		log.Printf("  Generated %s.md", group)
	}
	return nil
}

func generateRuleIndex(outDir string, rules []core.RuleInfo) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Defect detection rules of xmirlint")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("xmirlint checks every program against **%d rules**.", len(rules)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("CRITICAL"), "The program cannot be trusted"},
			{InlineCode("ERROR"), "A mistake that should be fixed"},
			{InlineCode("WARNING"), "A likely problem that should be reviewed"},
			{InlineCode("INFO"), "Informational feedback"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `xmirlint.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled: [comment-too-short]   # never run
  severity:
    ascii-only: error              # override severity
  rules:
    alias-too-long:
      max_parts: 3                 # rule-specific option`)

	w.Header(2, "All Rules")
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{
			fmt.Sprintf("[%s](/rules/%s#%s)", InlineCode(r.Name), r.Group, r.Name),
			r.Group,
			r.Type,
			r.DefaultSeverity.String(),
		}
	}
	w.Table([]string{"Rule", "Group", "Type", "Severity"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0o600)
}

func generateGroupPage(outDir, group string, rules []core.RuleInfo) error {
	w := NewMarkdownWriter()

	title := strings.ToUpper(group[:1]) + group[1:]
	w.Frontmatter(title+" Rules", groupDescriptions[group])
	w.GeneratedMarker()

	w.Header(1, title+" Rules")
	if desc := groupDescriptions[group]; desc != "" {
		w.Paragraph(desc)
	}

	for _, r := range rules {
		w.Header(2, r.Name)
		w.BulletList([]string{
			Bold("Severity") + ": " + InlineCode(r.DefaultSeverity.String()),
			Bold("Type") + ": " + r.Type,
		})
		if len(r.ConfigKeys) > 0 {
			keys := make([]string, len(r.ConfigKeys))
			for i, k := range r.ConfigKeys {
				keys[i] = InlineCode(k)
			}
			w.Paragraph(Bold("Options") + ": " + strings.Join(keys, ", "))
		}
		w.Paragraph(demoteHeaders(r.Motive))
	}

	return os.WriteFile(filepath.Join(outDir, group+".md"), w.Bytes(), 0o600)
}

// demoteHeaders nests the motive's own headers under the rule header.
func demoteHeaders(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = "##" + line
		}
	}
	return strings.Join(lines, "\n")
}
