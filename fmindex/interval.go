// Package fmindex declares the index oracle interface (§6.1) and the
// FM-interval value type the rest of the assembly core is built against.
// Building the index itself is out of scope (see spec.md §1); this package
// only fixes the contract the oracle must satisfy and a handful of
// interval-level helpers layered on top of it (§4.A).
package fmindex

import "github.com/BioinformaticsArchive/fermi/seqcode"

// Interval is an FM-interval: a suffix-array range of size S starting at
// (forward rank) K and (reverse-strand rank) L, together with a free-form
// scratch field used by callers to stash bookkeeping (a match-end position,
// an original-read offset, ...). It corresponds to fmintv_t in the source.
type Interval struct {
	K, L, S uint64
	Info    uint64
}

// Empty reports whether the interval denotes no occurrences.
func (iv Interval) Empty() bool {
	return iv.S == 0
}

// Oracle is the index collaborator consumed by the overlap walker, the
// unitig extender and the joiner. Implementations retrieve read text and
// extend intervals by one symbol in either direction; they are read-only
// with respect to the assembler (§5: "read-only/append-only shared
// references").
type Oracle interface {
	// Mcnt returns the cumulative symbol counts; Mcnt()[1] is the total
	// number of reads, both strands.
	Mcnt() [6]uint64

	// SetIntv returns the interval whose pattern is the single symbol c.
	SetIntv(c byte) Interval

	// Extend returns the six child intervals of iv after prepending
	// (backward) or appending (forward) each of the six alphabet symbols.
	// Index 0 is always the sentinel child.
	Extend(iv Interval, backward bool) [6]Interval

	// Extend0 is the variant of Extend that only computes the sentinel
	// child (entry 0), used when only sentinel-boundedness is being
	// tested.
	Extend0(iv Interval, backward bool) Interval

	// Retrieve materializes the text of read rid, in forward index
	// coordinates and the seqcode alphabet, along with the canonical
	// (lowest) read ID for that sequence's pair.
	Retrieve(rid uint64) (seq []byte, canonicalRid uint64)
}

// Comp is re-exported from seqcode for call sites that only import fmindex.
func Comp(c byte) byte {
	return seqcode.Comp(c)
}
