// Package unitig implements unambiguous unitig construction (§4.D): walking
// out from a seed read in both directions as long as exactly one
// overlap-compatible neighbor exists, collapsing contained reads and
// accumulating per-base coverage and paired-read insert-size statistics
// along the way. It is grounded on original_source/unitig.c's aux_t /
// fm6_get_nei / unitig_unidir / unitig1, built on top of the overlap and
// bitset packages.
package unitig

import (
	"github.com/BioinformaticsArchive/fermi/bitset"
	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/overlap"
)

// Pair is a generic (key, value) record shared by a vertex's two neighbor
// arc lists and its paired-read mapping table - both are ku128_t/fm128_t
// vectors of (uint64,uint64) in the source, reused here as one type rather
// than two near-identical ones. As a neighbor arc, X is the target vertex
// endpoint ID and Y is the overlap length. As a mapping entry, X is the
// ID of a read still waiting for its mate and Y packs the (begin,end) span
// it was seen at, begin in the high 32 bits.
type Pair struct {
	X, Y uint64
}

// Node is one emitted unitig: a maximal unambiguous walk collapsed from a
// seed read and every read contained within it. K names the two endpoints
// in the endpoint ID space the graph package hashes on; Seq is oriented so
// that position 0 is adjacent to K[0]. Nei[i] lists the (not yet resolved
// to vertex index) neighbor arcs leaving endpoint K[i]: one arc per
// candidate where the walk in that direction stopped at a forward
// bifurcation, the single neighbor where that neighbor was already flagged
// in bend or failed the backward check, and none at a dead end or a loop.
type Node struct {
	K       [2]uint64
	Nsr     int32
	Seq     []byte
	Cov     []byte
	Nei     [2][]Pair
	Mapping []Pair
}

// OutcomeKind classifies what became of a seed read.
type OutcomeKind int

const (
	// Emitted means the seed produced Node.
	Emitted OutcomeKind = iota
	// TooShort means the read was not longer than MinMatch and was
	// skipped without marking anything used.
	TooShort
	// AlreadyUsed means another seed's walk had already consumed this
	// read (as a unitig member or a contained read).
	AlreadyUsed
	// Contained means the seed read is itself contained in some other
	// read in the index; it was marked used but emits nothing.
	Contained
	// Discarded means a unitig was built but both its endpoints had
	// already been claimed by the reverse-complement walk from a
	// different seed; the caller must not emit it a second time.
	Discarded
)

// Outcome is the result of processing one seed read.
type Outcome struct {
	Kind OutcomeKind
	Node Node
}

// Stats accumulates the insert-size summary (§4.D, §9's "avg=.. std.dev=..
// #unpaired=..") across every seed an Extender processes.
type Stats struct {
	N        uint64
	Sum      uint64
	Sum2     uint64
	Unpaired uint64
}

// Add merges o into s, matching the atomic g_n/g_sum/g_sum2/g_unpaired
// merges fm6_unitig performs once each worker thread exits.
func (s *Stats) Add(o Stats) {
	s.N += o.N
	s.Sum += o.Sum
	s.Sum2 += o.Sum2
	s.Unpaired += o.Unpaired
}

// pairEntry is one thread-local paired-read mapping record: the
// (begin,end) retrieval-coordinate span at which a mate's seed read last
// extended into the unitig under construction, and the strand it was seen
// on. It is the unpacked form of the original's single packed uint64
// value - kept as three separate fields instead of bit-packing, per
// spec.md's §9 design note.
type pairEntry struct {
	Begin, End int
	Strand     int
}

// Extender owns one worker's share of mutable state for unitig
// construction: the index oracle and overlap walker, the three bitmaps
// shared across every worker (used, bend, visited), a reusable set of
// scratch buffers, and this worker's running insert-size accumulator and
// paired-read map. An Extender is not safe for concurrent use; the
// worker package gives one to each goroutine.
type Extender struct {
	oracle   fmindex.Oracle
	walker   *overlap.Walker
	minMatch int
	maxISize int

	used    *bitset.Bitset
	bend    *bitset.Bitset
	visited *bitset.Bitset

	pairing bool
	pairMap map[uint64]pairEntry
	stats   Stats

	// scratch, reused across Unitig1 calls to avoid per-seed allocation.
	containedOvlp []fmindex.Interval
	prevBuf       []candidate
	currBuf       []candidate
	neiBuf        []fmindex.Interval
	containedBuf  []containedRead
	rcScratch     []byte
}

// NewExtender builds an Extender sharing the given bitmaps with the rest
// of the worker pool. pairing enables the insert-size accumulator; the
// unambiguous joiner (package join) runs its own, lighter-weight walk and
// never enables it.
func NewExtender(o fmindex.Oracle, minMatch, maxISize int, used, bend, visited *bitset.Bitset, pairing bool) *Extender {
	e := &Extender{
		oracle:   o,
		walker:   overlap.New(o),
		minMatch: minMatch,
		maxISize: maxISize,
		used:     used,
		bend:     bend,
		visited:  visited,
		pairing:  pairing,
	}
	if pairing {
		e.pairMap = make(map[uint64]pairEntry)
	}
	return e
}

// Stats returns a snapshot of this Extender's accumulated insert-size
// statistics, for the worker pool to merge via Stats.Add.
func (e *Extender) Stats() Stats {
	return e.stats
}

// containedRead records a read found to be contained during a unidirectional
// extension walk, for later insertion into the paired-read map exactly as
// if it had itself extended the unitig (unitig.c folds contained reads into
// pair_add the same way as the chosen neighbor).
type containedRead struct {
	iv     fmindex.Interval
	pos    int
	endLen int
}

func growSeq(seq []byte, c byte) []byte {
	return append(seq, c)
}
