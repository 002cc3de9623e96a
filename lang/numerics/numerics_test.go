package numerics_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valhalla-lang/valhallac/lang/numerics"
)

// Vectors carried over from the original implementation's own numeric
// parsing test table.
func TestParse(t *testing.T) {
	cases := []struct {
		lit  string
		want numerics.Numeric
	}{
		{"0xfa", numerics.Natural(250)},
		{"-0xfa", numerics.Integer(-250)},
		{"2.672", numerics.Real(2.672)},
		{"2.672e3", numerics.Real(2672.0)},
		{"2.672e+16", numerics.Real(2.672e16)},
		{"2.672e-10", numerics.Real(2.672e-10)},
		{"67e-4", numerics.Real(0.0067)},
		{"67e+10", numerics.Natural(670000000000)},
		{"-2.672e+16", numerics.Real(-2.672e16)},
		{"-67e+10", numerics.Integer(-670000000000)},
		{"0b01010110", numerics.Natural(0b01010110)},
		{"0o721", numerics.Natural(0o721)},
		{"-6e12", numerics.Integer(-6000000000000)},
	}

	for _, c := range cases {
		t.Run(c.lit, func(t *testing.T) {
			got, err := numerics.Parse(c.lit)
			require.NoError(t, err)
			require.True(t, c.want.Equal(got), "Parse(%q) = %#v, want %#v", c.lit, got, c.want)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, lit := range []string{"0xfa", "-0xfa", "2.672e+16", "67e+10", "-67e+10"} {
		n, err := numerics.Parse(lit)
		require.NoError(t, err)
		n2, err := numerics.Parse(n.String())
		require.NoError(t, err)
		require.True(t, n.Rank() == numerics.RankReal || n.Equal(n2),
			"round trip of %q via %q produced %#v, want %#v", lit, n.String(), n2, n)
	}
}

func TestArithmeticPromotion(t *testing.T) {
	require.Equal(t, numerics.RankNatural, numerics.Add(numerics.Natural(1), numerics.Natural(2)).Rank())
	require.Equal(t, numerics.RankReal, numerics.Add(numerics.Natural(1), numerics.Real(2)).Rank())
	require.Equal(t, numerics.RankInteger, numerics.Add(numerics.Natural(1), numerics.Integer(2)).Rank())
}

func TestNaturalSubtractionUnderflowWidens(t *testing.T) {
	r := numerics.Sub(numerics.Natural(1), numerics.Natural(2))
	require.Equal(t, numerics.RankInteger, r.Rank())
	require.Equal(t, int64(-1), r.AsInteger())

	r2 := numerics.Sub(numerics.Natural(5), numerics.Natural(2))
	require.Equal(t, numerics.RankNatural, r2.Rank())
	require.Equal(t, uint64(3), r2.AsNatural())
}
