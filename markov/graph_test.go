package markov

import (
	"strings"
	"testing"

	"github.com/pktpace/pace/pacediag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleSpec = "<256|0.1,0.7,0.2<1024|0.3,0.4,0.3<1470|0.4,0.4,0.2"

func TestGraphExample(t *testing.T) {
	assert := assert.New(t)

	g, err := New(exampleSpec)
	require.NoError(t, err)

	assert.Equal(3, g.Len())
	assert.Equal(0, g.State())
	assert.Equal([]int{256, 1024, 1470}, g.lens)
}

func TestGraphWhitespaceStripped(t *testing.T) {
	g, err := New("<256| 0.1,0.7,0.2 <1024|0.3,0.4,0.3\n\t<1470|0.4, 0.4, 0.2")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
}

func TestRowSumInvariant(t *testing.T) {
	g, err := New(exampleSpec)
	require.NoError(t, err)

	for row := 0; row < g.n; row++ {
		sum := 0.0
		for col := 0; col < g.n; col++ {
			sum += g.cells[row*g.n+col].Prob
		}
		assert.InDelta(t, 1.0, sum, floatTolerance, "row %d", row)
	}
}

func TestBoundMonotonicity(t *testing.T) {
	g, err := New(exampleSpec)
	require.NoError(t, err)

	for row := 0; row < g.n; row++ {
		prev := 0.0
		for col := 0; col < g.n; col++ {
			bound := g.cells[row*g.n+col].Bound
			assert.GreaterOrEqual(t, bound, prev, "row %d col %d", row, col)
			prev = bound
		}
		assert.InDelta(t, 1.0, prev, floatTolerance, "row %d final bound", row)
	}
}

func TestLengthsFilledPerColumn(t *testing.T) {
	g, err := New(exampleSpec)
	require.NoError(t, err)

	// Every cell in column c carries the declared length of state c, so
	// sampling never needs a second lookup.
	for row := 0; row < g.n; row++ {
		for col := 0; col < g.n; col++ {
			assert.Equal(t, g.lens[col], g.cells[row*g.n+col].Len)
		}
	}
}

func TestNextFromFirstState(t *testing.T) {
	assert := assert.New(t)

	g, err := New(exampleSpec)
	require.NoError(t, err)

	// Row 0 bounds are 0.1, 0.8, 1.0.
	for _, tc := range []struct {
		r    float64
		want int
	}{
		{0.0, 256},
		{0.05, 256},
		{0.0999, 256},
		{0.100001, 1024},
		{0.5, 1024},
		{0.799999, 1024},
		{0.800001, 1470},
		{0.99, 1470},
	} {
		g.cur = 0
		got := g.next(tc.r)
		assert.Equal(tc.want, got, "r=%f", tc.r)
	}
}

func TestNextAdvancesState(t *testing.T) {
	g, err := New(exampleSpec)
	require.NoError(t, err)

	g.cur = 0
	got := g.next(0.5)
	assert.Equal(t, 1024, got)
	assert.Equal(t, 1, g.State())
}

func TestTieBreakSkipsZeroProbability(t *testing.T) {
	spec := "<10|0.5,0.0,0.5<20|0.5,0.0,0.5<30|0.5,0.0,0.5"
	g, err := New(spec)
	require.NoError(t, err)

	// The middle state carries no mass in any row; no draw may select it.
	for _, row := range []int{0, 2} {
		for i := 0; i <= 1000; i++ {
			g.cur = row
			got := g.next(float64(i) / 1001.0)
			assert.NotEqual(t, 20, got, "row %d draw %d", row, i)
		}
	}
}

func TestZeroMassLeadingColumn(t *testing.T) {
	// A draw of 0 lands on the leading zero-probability column's bound;
	// the selection must recover to the column actually carrying mass.
	g, err := New("<10|0.0,1.0<20|0.0,1.0")
	require.NoError(t, err)

	g.cur = 0
	assert.Equal(t, 20, g.next(0.0))
	assert.Equal(t, 1, g.State())
}

func TestBoundaryDrawClampsToLastColumn(t *testing.T) {
	// Row sums to 0.999995, inside tolerance, so a draw beyond the final
	// bound is possible and must clamp to the last column.
	g, err := New("<10|0.4,0.4,0.199995<20|0.4,0.4,0.199995<30|0.4,0.4,0.199995")
	require.NoError(t, err)

	g.cur = 0
	assert.Equal(t, 30, g.next(0.999999))
	assert.Equal(t, 2, g.State())
}

func TestBoundaryDrawWithTrailingZeroColumn(t *testing.T) {
	// A trailing zero-probability column shares the final bound; a draw
	// beyond it must land on the last column with positive mass.
	g, err := New("<10|0.5,0.5,0.0<20|0.5,0.5,0.0<30|0.5,0.5,0.0")
	require.NoError(t, err)

	g.cur = 0
	assert.Equal(t, 20, g.next(0.9999999))
	assert.Equal(t, 1, g.State())
}

func TestDeterministicSampling(t *testing.T) {
	a, err := New(exampleSpec)
	require.NoError(t, err)
	b, err := New(exampleSpec)
	require.NoError(t, err)

	a.SetSeed(42)
	b.SetSeed(42)

	var first []int
	for i := 0; i < 256; i++ {
		first = append(first, a.Next())
	}
	for i, want := range first {
		assert.Equal(t, want, b.Next(), "sample %d", i)
	}

	// Reseeding replays the same trace.
	a.SetSeed(42)
	a.cur = 0
	for i, want := range first {
		assert.Equal(t, want, a.Next(), "replayed sample %d", i)
	}
}

func TestParseMalformedValue(t *testing.T) {
	_, err := New("<256|abc,0.5,0.5<512|0.5,0.25,0.25<1024|0.2,0.4,0.4")
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestParseProbabilityRange(t *testing.T) {
	_, err := New("<256|1.5,0.5<512|0.5,0.5")
	assert.ErrorIs(t, err, ErrProbabilityRange)

	_, err = New("<256|-0.1,1.1<512|0.5,0.5")
	assert.ErrorIs(t, err, ErrProbabilityRange)
}

func TestParseCumulativeOverflow(t *testing.T) {
	_, err := New("<256|0.9,0.9<512|0.5,0.5")
	assert.ErrorIs(t, err, ErrCumulativeOverflow)
}

func TestParseIncompleteDistribution(t *testing.T) {
	_, err := New("<256|0.3,0.3<512|0.5,0.5")
	assert.ErrorIs(t, err, ErrIncompleteDistribution)
}

func TestParseMalformedSpec(t *testing.T) {
	for _, spec := range []string{
		"",
		"256|0.5,0.5",
		"<abc|0.5,0.5<512|0.5,0.5",
		"<-1|0.5,0.5<512|0.5,0.5",
		"<256,0.5,0.5",
	} {
		_, err := New(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestRowLengthMismatchWarns(t *testing.T) {
	var capture pacediag.Capture

	// Row 1 supplies a single probability; the distribution still sums to
	// 1 so the graph builds, with a warning.
	g, err := NewWithReporter("<256|0.5,0.5<512|1.0", &capture)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	records := capture.Records()
	require.Len(t, records, 1)
	assert.Equal(t, pacediag.LevelWarn, records[0].Level)
	assert.Equal(t, "markov", records[0].Component)
	assert.Contains(t, records[0].Message, "row 1")
}

func TestRowLengthExcessWarns(t *testing.T) {
	var capture pacediag.Capture

	g, err := NewWithReporter("<256|0.5,0.5,0.3<512|0.5,0.5", &capture)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	require.Len(t, capture.Records(), 1)
}

func TestShortRowMustStillSumToOne(t *testing.T) {
	var capture pacediag.Capture

	_, err := NewWithReporter("<256|0.5,0.5<512|0.5", &capture)
	assert.ErrorIs(t, err, ErrIncompleteDistribution)
}

func TestString(t *testing.T) {
	g, err := New(exampleSpec)
	require.NoError(t, err)

	s := g.String()
	assert.True(t, strings.HasPrefix(s, "256="))
	assert.Contains(t, s, "1024=")
	assert.Contains(t, s, "1470=")
	assert.Equal(t, 3, strings.Count(s, "\n"))
}
