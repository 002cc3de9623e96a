package issue_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valhalla-lang/valhallac/lang/issue"
	"github.com/valhalla-lang/valhallac/lang/token"
)

func TestReporterTracksFirstFatal(t *testing.T) {
	r := issue.NewReporter()
	require.False(t, r.Halted())

	r.Report(issue.New(issue.LexWarn, token.Unknown, "suspicious symbol"))
	require.False(t, r.Halted())

	r.Report(issue.New(issue.TypeError, token.Unknown, "a rebinds"))
	require.True(t, r.Halted())
	require.Contains(t, r.HaltMessage(), "a rebinds")

	// A second fatal issue does not overwrite the first halt message.
	r.Report(issue.New(issue.CompError, token.Unknown, "second problem"))
	require.Contains(t, r.HaltMessage(), "a rebinds")
}

func TestErrListAggregatesAll(t *testing.T) {
	r := issue.NewReporter()
	r.Report(issue.New(issue.LexWarn, token.Unknown, "one"))
	r.Report(issue.New(issue.ParseError, token.Unknown, "two"))

	err := r.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "one")
}

func TestNoIssuesIsNilErr(t *testing.T) {
	r := issue.NewReporter()
	require.Nil(t, r.Err())
}

func TestKindFatalDefaults(t *testing.T) {
	require.True(t, issue.TypeError.Fatal())
	require.False(t, issue.TypeWarn.Fatal())
}
