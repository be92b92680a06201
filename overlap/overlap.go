// Package overlap implements the overlap walker (§4.C): from a seed read,
// enumerate irreducible right-overlap intervals at >= min_match, and test a
// read for containment in a longer read. It is grounded on
// original_source/unitig.c's overlap_intv and fm6_is_contained, which are
// shared by both the unitig extender (unitig.c) and the unambiguous joiner
// (join.c).
package overlap

import (
	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/seqcode"
)

// Walker enumerates overlap intervals against an index oracle. A Walker is
// thread-compatible, not thread-safe: each worker goroutine owns one.
type Walker struct {
	Oracle fmindex.Oracle
}

// New returns a Walker over the given oracle.
func New(o fmindex.Oracle) *Walker {
	return &Walker{Oracle: o}
}

// Overlap walks the index from position j in seq, extending one symbol at a
// time toward beg (at5=false, the read's 3' direction) or toward the end of
// seq (at5=true, the 5' direction), requiring seq[j] to match the boundary
// of a full read by construction. Every sentinel-bounded interval seen at
// depth >= minMatch is appended to *out (grown in place, not reset - callers
// clear it first, matching fm6_get_nei's reuse of a->a[0]/a->a[1]), ordered
// so the smallest interval (longest overlap) ends up first.
//
// When incSentinel is true the sentinel-extended interval itself is
// recorded (used when the walker will keep matching into the 5'-end, as
// check_left_simple does); otherwise the pre-extension interval is recorded
// (the usual "this is a candidate overlap, not yet a full match" case).
//
// It returns the final, deepest interval reached (ik in the source).
func (w *Walker) Overlap(seq []byte, minMatch, j, beg int, at5, incSentinel bool, out *[]fmindex.Interval) fmindex.Interval {
	var dir, end int
	if at5 {
		dir, end = 1, len(seq)
	} else {
		dir, end = -1, beg-1
	}
	ik := w.Oracle.SetIntv(seq[j])
	start := len(*out)
	depth := 1
	for jj := j + dir; jj != end; jj, depth = jj+dir, depth+1 {
		var c byte
		if at5 {
			c = seqcode.Comp(seq[jj])
		} else {
			c = seq[jj]
		}
		ok := w.Oracle.Extend(ik, !at5)
		if ok[c].Empty() {
			break
		}
		if depth >= minMatch && !ok[0].Empty() {
			var tmp fmindex.Interval
			if incSentinel {
				tmp = ok[0]
			} else {
				tmp = ik
			}
			tmp.Info = uint64(jj - dir)
			*out = append(*out, tmp)
		}
		ik = ok[c]
	}
	reverseFrom(*out, start)
	return ik
}

// reverseFrom reverses (*out)[start:] in place, matching
// fm_reverse_fmivec's "smallest interval (longest overlap) comes first"
// postcondition applied per Overlap call within a shared, reused buffer.
func reverseFrom(s []fmindex.Interval, start int) {
	for i, j := start, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// IsContained tests whether seq is left- or right-contained in some other
// read in the index; ret < 0 signals containment. ovlp accumulates the
// irreducible right-overlaps of seq itself (the caller reuses these as the
// seed's initial neighbor candidates), and finalIntv is the sentinel-bounded
// interval reached after extending seq's suffix interval to a full read on
// both sides - callers mark the reads it denotes as used, since they are by
// construction contained in (or equal to) seq.
func (w *Walker) IsContained(seq []byte, minMatch int, ovlp *[]fmindex.Interval) (ret int, finalIntv fmindex.Interval) {
	if len(seq) <= minMatch {
		panic("overlap.IsContained requires len(seq) > minMatch")
	}
	ik := w.Overlap(seq, minMatch, len(seq)-1, 0, false, false, ovlp)
	ok := w.Oracle.Extend(ik, true)
	if ok[0].Empty() {
		panic("overlap: sentinel extension of a full-length read must be nonempty")
	}
	ret = 0
	if ik.S != ok[0].S {
		ret = -1 // left-contained
	}
	ik = ok[0]
	ok = w.Oracle.Extend(ik, false)
	if ok[0].Empty() {
		panic("overlap: sentinel extension of a full-length read must be nonempty")
	}
	if ik.S != ok[0].S {
		ret = -1 // right-contained
	}
	finalIntv = ok[0]
	return ret, finalIntv
}
