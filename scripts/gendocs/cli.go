package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/xmirlint/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envVars documents the environment overrides most users reach for.
var envVars = [][2]string{
	{"XMIRLINT_OUTPUT", "Output format (auto, text, markdown, json)"},
	{"XMIRLINT_SEVERITY", "Minimum severity to report"},
	{"XMIRLINT_STATE_PATH", "Run history database"},
	{"XMIRLINT_PATTERNS_DIR", "Directory of additional pattern rules"},
	{"XMIRLINT_CONCURRENCY", "Programs analyzed in parallel"},
	{"XMIRLINT_TAGGER__KIND", "Part-of-speech tagger (lexicon, http)"},
	{"XMIRLINT_TAGGER__URL", "Endpoint of the http tagger"},
	{"XMIRLINT_SERVER__PORT", "Port of the HTTP API"},
}

var exitCodes = [][2]string{
	{"0", "No defects"},
	{"1", "Defects found"},
	{"2", "Configuration error, unreadable program or failed rule"},
}

func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	if err := writeDoc(outDir, "index.md", cliIndex(root)); err != nil {
		return err
	}
	for _, cmd := range documented(root) {
		if err := writeDoc(outDir, cmd.Name()+".md", commandPage(cmd)); err != nil {
			return err
		}
	}
	return nil
}

func writeDoc(dir, name string, w *MarkdownWriter) error {
	if err := os.WriteFile(filepath.Join(dir, name), w.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Printf("  Generated %s", name)
	return nil
}

// documented returns the subcommands that get a page.
func documented(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || strings.HasPrefix(sub.Name(), "__") {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func cliIndex(root *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for xmirlint")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("xmirlint finds defects in XMIR programs, documents its rules, keeps a history of runs and serves the same engine over HTTP.")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/xmirlint/cmd/xmirlint@latest\nxmirlint <command> [options]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Every key of `xmirlint.yaml` can be set with an `XMIRLINT_` variable; `__` separates nested keys. Flags win over the environment, which wins over the file.")
	w.Table([]string{"Variable", "Description"}, pairs(envVars))

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, pairs(exitCodes))
	return w
}

func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	w.CodeBlock("bash", "xmirlint "+strings.TrimPrefix(cmd.UseLine(), "xmirlint "))

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}
	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagHeaders, flagRows(cmd.LocalFlags()))
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, flagRows(cmd.InheritedFlags()))
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w
}

var flagHeaders = []string{"Option", "Short", "Default", "Description"}

func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	return rows
}

func pairs(kv [][2]string) [][]string {
	rows := make([][]string, len(kv))
	for i, p := range kv {
		rows[i] = []string{InlineCode(p[0]), p[1]}
	}
	return rows
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, line := range lines {
			if len(line) >= indent {
				lines[i] = line[indent:]
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
