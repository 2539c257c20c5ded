// Package markov builds and samples the discrete-time Markov chain which
// drives packet-length selection in the traffic generator. A graph is
// parsed once from a bracket specification of the form
//
//	<256|0.1,0.7,0.2<1024|0.3,0.4,0.3<1470|0.4,0.4,0.2
//
// where each '<' introduces one state: its packet length, then one
// outgoing probability per declared state, in declaration order. The
// graph knows nothing about sockets; one worker owns it and advances it
// once per sample.
package markov

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pktpace/pace/pacediag"
)

// Tolerance for row sums and zero-probability detection.
const floatTolerance = 1e-5

func floatZero(v float64) bool      { return math.Abs(v) < floatTolerance }
func greaterThanOne(v float64) bool { return v-1.0 > floatTolerance }
func lessThanOne(v float64) bool    { return 1.0-v > floatTolerance }

var (
	ErrMalformedSpec          = errors.New("malformed bracket specification")
	ErrMalformedValue         = errors.New("probability is not a number")
	ErrProbabilityRange       = errors.New("probability outside [0, 1]")
	ErrCumulativeOverflow     = errors.New("cumulative probability exceeds 1")
	ErrIncompleteDistribution = errors.New("cumulative probability short of 1")
)

// Cell is one entry of the transition matrix. Len is the packet length of
// the destination state (the column), copied into every row so sampling
// can read the arrival length straight off the chosen cell. Bound is the
// cumulative probability across the row up to and including this column;
// a ~0 probability keeps the previous column's bound, which is what marks
// the column as carrying no mass during the tie-break walk.
type Cell struct {
	Len   int
	Prob  float64
	Bound float64
}

// Graph is a validated n x n transition matrix plus the chain's cursor
// and its own draw source. The cursor and the source are unsynchronized;
// a Graph belongs to exactly one sampling worker.
type Graph struct {
	cells []Cell // row-major, n*n
	lens  []int  // declared packet length per state
	n     int
	cur   int
	seed  int64
	rng   *rand.Rand
}

// New parses and validates a bracket specification. No partially built
// graph escapes: any fatal validation failure returns only the error.
func New(spec string) (*Graph, error) {
	return NewWithReporter(spec, pacediag.Default())
}

// NewWithReporter is New with an explicit diagnostics reporter. A row
// supplying the wrong number of probabilities is reported as a warning,
// not a failure, as long as its distribution still sums to 1.
func NewWithReporter(spec string, rep pacediag.Reporter) (*Graph, error) {
	clean := stripSpace(spec)
	if len(clean) == 0 || clean[0] != '<' {
		return nil, fmt.Errorf("%w: must begin with '<'", ErrMalformedSpec)
	}

	decls := strings.Split(clean[1:], "<")
	n := len(decls)

	cells := make([]Cell, n*n)
	lengths := make([]int, n)

	for row, decl := range decls {
		label, list, ok := strings.Cut(decl, "|")
		if !ok {
			return nil, fmt.Errorf("%w: state %d has no '|' separator", ErrMalformedSpec, row)
		}
		length, err := strconv.Atoi(label)
		if err != nil || length < 0 {
			return nil, fmt.Errorf("%w: state %d length %q", ErrMalformedSpec, row, label)
		}
		lengths[row] = length

		prev := 0.0
		col := 0
		for _, tok := range strings.Split(list, ",") {
			if col >= n {
				col++ // counted for the mismatch warning, not stored
				continue
			}
			prob, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid value of %q", ErrMalformedValue, tok)
			}
			if prob < 0 || greaterThanOne(prob) {
				return nil, fmt.Errorf("%w: probability must be between 0 and 1 but is %f", ErrProbabilityRange, prob)
			}

			c := &cells[row*n+col]
			c.Prob = prob
			// A ~0 probability keeps the previous bound so equal bounds
			// mark zero-mass columns.
			if floatZero(prob) {
				c.Bound = prev
			} else {
				c.Bound = prev + prob
			}
			if greaterThanOne(c.Bound) {
				return nil, fmt.Errorf("%w: row %d reaches %f", ErrCumulativeOverflow, row, c.Bound)
			}
			prev = c.Bound
			col++
		}

		if col != n {
			rep.Warnf("markov", "row %d expected %d probabilities, got %d", row, n, col)
		}
		// Columns a short row never supplied carry no mass.
		for fill := col; fill < n; fill++ {
			cells[row*n+fill].Bound = prev
		}
		if lessThanOne(cells[row*n+n-1].Bound) {
			return nil, fmt.Errorf("%w: row %d ends at %f", ErrIncompleteDistribution, row, cells[row*n+n-1].Bound)
		}
	}

	// Second pass: every cell in column c carries the declared length of
	// state c, whatever its row.
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			cells[row*n+col].Len = lengths[col]
		}
	}

	const defaultSeed = 1
	return &Graph{
		cells: cells,
		lens:  lengths,
		n:     n,
		seed:  defaultSeed,
		rng:   rand.New(rand.NewSource(defaultSeed)),
	}, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

// Next draws the chain's next state and returns its packet length. The
// cursor advances to the chosen state.
func (g *Graph) Next() int {
	return g.next(g.rng.Float64())
}

func (g *Graph) next(r float64) int {
	row := g.cells[g.cur*g.n : (g.cur+1)*g.n]

	// First column whose bound covers the draw. A draw at or beyond the
	// last bound (possible near 1.0 within tolerance) clamps to the last
	// column instead of running off the row.
	ix := 0
	for ix < g.n-1 && row[ix].Bound < r {
		ix++
	}
	// Equal bounds mean zero-mass columns; walk back to the nearest
	// preceding column with positive probability. A zero-mass run at the
	// start of the row has no preceding column, so recover forward; row
	// validation guarantees some column has mass, so one of the walks
	// terminates on it.
	for ix > 0 && floatZero(row[ix].Prob) {
		ix--
	}
	for ix < g.n-1 && floatZero(row[ix].Prob) {
		ix++
	}

	g.cur = ix
	return row[ix].Len
}

// SetSeed deterministically reseeds the graph's draw source, enabling
// reproducible traffic traces.
func (g *Graph) SetSeed(seed int64) {
	g.seed = seed
	g.rng = rand.New(rand.NewSource(seed))
}

// Len returns the number of states.
func (g *Graph) Len() int { return g.n }

// State returns the chain's current state index.
func (g *Graph) State() int { return g.cur }

// String dumps the matrix one row per line, each cell as
// length|probability/bound.
func (g *Graph) String() string {
	var b strings.Builder
	for row := 0; row < g.n; row++ {
		fmt.Fprintf(&b, "%d=", g.lens[row])
		for col := 0; col < g.n; col++ {
			c := g.cells[row*g.n+col]
			fmt.Fprintf(&b, " %d|%f/%f", c.Len, c.Prob, c.Bound)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
