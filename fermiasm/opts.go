// Package fermiasm collects the options shared across the assembly core's
// stages and the CLI composition root that wires them together. The Opts
// struct and its defaults are grounded on the teacher repository's
// fusion.DefaultOpts / markduplicates Opts pattern: one struct per
// pipeline, constructed once and threaded down by value or pointer rather
// than read from package-level globals.
package fermiasm

// Flag is a bitfield of optional graph-construction behaviors.
type Flag uint32

const (
	// FlagDropTip0 drops single-read tip vertices shorter than MinEl at
	// graph read time, matching mog.c's MOG_F_DROP_TIP0.
	FlagDropTip0 Flag = 1 << iota
)

// Opts bundles every tunable of the assembly core (§4). Zero value is not
// meaningful; build one via DefaultOpts and override fields as needed.
type Opts struct {
	// MinMatch is the minimum overlap length the overlap walker, the
	// unitig extender and the joiner all require before a match counts.
	MinMatch int
	// NThreads is the worker pool's goroutine count (§5).
	NThreads int
	// Flag is the optional-behavior bitfield above.
	Flag Flag
	// MaxArc caps the number of arcs retained per endpoint when a graph
	// is read (§4.G).
	MaxArc int
	// MinEl is the minimum vertex length a single-read tip must reach
	// to survive FlagDropTip0 (§4.G).
	MinEl int
	// MinDRatio0 is the dominance threshold ratio applied to an
	// endpoint's arc lengths when a graph is read (§4.G).
	MinDRatio0 float64
	// MaxISize is the insert-size cutoff the unitig extender's
	// paired-read accumulator applies before counting a pair (§4.D).
	MaxISize int
}

// DefaultOpts returns the assembly core's default tuning, matching
// mog_init_opt's defaults plus the overlap/unitig parameters the rest of
// the pipeline needs.
func DefaultOpts() Opts {
	return Opts{
		MinMatch:   31,
		NThreads:   1,
		Flag:       FlagDropTip0,
		MaxArc:     512,
		MinEl:      300,
		MinDRatio0: 0.7,
		MaxISize:   1000,
	}
}

// Has reports whether f is set in the options' Flag bitfield.
func (o Opts) Has(f Flag) bool { return o.Flag&f != 0 }
