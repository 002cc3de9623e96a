package scanner_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valhalla-lang/valhallac/internal/filetest"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/scanner"
	"github.com/valhalla-lang/valhallac/lang/token"
)

var testUpdateScannerTests = false

// dumpToken renders a token for golden comparison: class plus literal,
// quoted for Str tokens, omitting the literal entirely for the
// literal-less EOF token so no line carries trailing whitespace.
func dumpToken(t token.Token) string {
	if t.Literal == "" {
		return t.Class.String()
	}
	if t.Class == token.Str {
		return t.Class.String() + " " + quoteGolden(t.Literal)
	}
	return t.Class.String() + " " + t.Literal
}

func quoteGolden(s string) string {
	return `"` + s + `"`
}

// TestScanGolden walks testdata/in/*.vh, lexes each file and diffs the
// token dump against testdata/out/<name>.want, following the teacher's
// internal/filetest golden-file pattern.
func TestScanGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".vh") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			r := issue.NewReporter()
			toks := scanner.Lex(fi.Name(), string(src), r)

			lines := make([]string, len(toks))
			for i, tok := range toks {
				lines[i] = dumpToken(tok)
			}
			output := strings.Join(lines, "\n")

			var errBuf strings.Builder
			for _, iss := range r.Sorted() {
				errBuf.WriteString(iss.Error())
				errBuf.WriteByte('\n')
			}

			filetest.DiffOutput(t, fi, output, resultDir, &testUpdateScannerTests)
			filetest.DiffErrors(t, fi, errBuf.String(), resultDir, &testUpdateScannerTests)
		})
	}
}
