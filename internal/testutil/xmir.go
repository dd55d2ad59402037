package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestsProgram is a +tests suite with a non-ASCII comment, a duplicated
// object name and two test objects not starting with a verb in singular.
const TestsProgram = `<?xml version="1.0" encoding="UTF-8"?>
<program name="suite">
  <comments>
    <comment line="1"> Тест of parsing</comment>
  </comments>
  <metas>
    <meta line="3"><head>tests</head><tail/></meta>
  </metas>
  <objects>
    <o name="reads-file" line="5" pos="8"/>
    <o name="read-file" line="6" pos="8"/>
    <o name="read-file" line="7" pos="8"/>
  </objects>
</program>`

// TestsProgramDefects lists the defects of TestsProgram in report order.
var TestsProgramDefects = []string{
	"[ascii-only WARNING]:1 Only ASCII characters are allowed in comments, while 'Т' is used at the 1st line at the 2nd position",
	`[duplicate-names CRITICAL]:7 The object name "read-file" is already used at line 6 in the same scope`,
	"[test-object-is-verb-in-singular WARNING]:6 The name of the test object 'read-file' must start with a verb in singular, while 'read' is a verb but not singular (VB), at the 6th line at the 9th position",
	"[test-object-is-verb-in-singular WARNING]:7 The name of the test object 'read-file' must start with a verb in singular, while 'read' is a verb but not singular (VB), at the 7th line at the 9th position",
}

// CleanProgram has no defects under the built-in rules.
const CleanProgram = `<?xml version="1.0" encoding="UTF-8"?>
<program name="sum">
  <comments>
    <comment line="1"> Returns the sum of two integers</comment>
  </comments>
  <metas>
    <meta line="3"><head>version</head><tail>1.0.0</tail><part>1.0.0</part></meta>
    <meta line="4"><head>home</head><tail>https://github.com/objectionary/eo</tail><part>https://github.com/objectionary/eo</part></meta>
    <meta line="5"><head>alias</head><tail>org.eolang.txt.sprintf</tail><part>org.eolang.txt.sprintf</part></meta>
  </metas>
  <objects>
    <o name="sum" line="7" pos="7">
      <o name="x" line="8" pos="3"/>
      <o name="y" line="9" pos="3"/>
    </o>
  </objects>
</program>`

// AliasProgram reproduces the classic alias-too-long defect at line 5.
const AliasProgram = `<?xml version="1.0" encoding="UTF-8"?>
<program name="alias">
  <comments>
    <comment line="1"> Formats a greeting for the user</comment>
  </comments>
  <metas>
    <meta line="5"><head>alias</head><tail>a b c</tail><part>a</part><part>b</part><part>c</part></meta>
  </metas>
  <objects>
    <o name="app" line="7" pos="7"/>
  </objects>
</program>`

// BrokenXMIR is not well-formed XML.
const BrokenXMIR = `<program name="broken"><objects>`

// WriteFile writes content to dir/name, creating parent directories,
// and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
