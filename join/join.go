// Package join implements unambiguous joining (§4.E): a lighter-weight
// bidirectional walk than package unitig's, tolerant of a weak minority of
// disagreeing candidates via a symbol-weighted dominance rule rather than
// requiring strict single-candidate agreement. It is grounded on
// original_source/join.c's aux_t / unambi_nei_for / neighbor1.
package join

import (
	"github.com/BioinformaticsArchive/fermi/bitset"
	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/overlap"
	"github.com/BioinformaticsArchive/fermi/seqcode"
)

// Outcome classifies what a joiner's walk over one seed read produced.
type Outcome struct {
	// Rid is the seed read ID the walk started from.
	Rid uint64
	// Code is the terminal reason code the walk stopped with: 0 on a
	// clean finish by exhausting forward extension length (never
	// reached in practice - the walk always stops on one of the
	// negative reason codes below), or one of:
	//
	//	-1 seed too short (<= minMatch)
	//	-2 left-contained in another read
	//	-3 right-contained in another read
	//	-6 no forward overlap at all
	//	-7 forward candidates disagree past tolerance
	//	-8 backward confirmation disagrees past tolerance
	//	-9 backward confirmation's dominant symbol contradicts the
	//	   forward walk's chosen symbol
	//	-10 seed was already consumed by another walk
	Code int
	// Begin is the absolute position the walk's surviving match began
	// at, meaningful when Code is not one of the immediate-reject codes
	// above.
	Begin int
	// Seq is the final, possibly-extended sequence in symbol codes,
	// oriented so that Seq[Begin] sits at the start of the confirmed
	// match.
	Seq []byte
}

const (
	dominanceRatio = 0.8
	dominanceSlack = 2
)

// Joiner owns one worker's state for the unambiguous-join pass: the index
// oracle, the shared "bits" bitmap marking reads already folded into some
// walk, and this worker's running duplicate-detection counters.
type Joiner struct {
	oracle   fmindex.Oracle
	walker   *overlap.Walker
	minMatch int
	bits     *bitset.Bitset

	cnt uint64 // reads newly marked, mirroring g_cnt
	tot uint64 // bits touched overall, mirroring g_tot

	prev, curr []weighted
	ovlpScratch []fmindex.Interval
}

// NewJoiner builds a Joiner sharing bits with the rest of the worker pool.
func NewJoiner(o fmindex.Oracle, minMatch int, bits *bitset.Bitset) *Joiner {
	return &Joiner{oracle: o, walker: overlap.New(o), minMatch: minMatch, bits: bits}
}

// Counts returns this Joiner's (newly-set, total) bit-touch counts, for
// the worker pool to merge into a duplicate-rate report.
func (j *Joiner) Counts() (newlySet, total uint64) {
	return j.cnt, j.tot
}

type weighted struct {
	iv fmindex.Interval
}

// setBits marks every read in iv as used in j.bits, counting how many
// were newly set versus already set - grounded on join.c's set_bit/
// set_bits pair, which join.c (unlike unitig.c) tracks for a duplicate
// rate report.
func (j *Joiner) setBits(iv fmindex.Interval) {
	for k := uint64(0); k < iv.S; k++ {
		for _, id := range [2]uint64{iv.K + k, iv.L + k} {
			j.tot++
			if !j.bits.TestAndSet(id) {
				j.cnt++
			}
		}
	}
}

// markWalked calls setBits on every sentinel-bounded interval a single
// Overlap call appended to the walk's scratch buffer, mirroring join.c's
// repeated set_bits(bits, ok) at each overlap_intv call site.
func (j *Joiner) markWalked(ivs []fmindex.Interval) {
	for _, iv := range ivs {
		j.setBits(iv)
	}
}

// unambiNeiFor is the dominance-rule forward candidate search (§4.E),
// grounded on unambi_nei_for. first and beg==0 together gate the
// containment checks, matching the source's "only check containment on
// the very first call for this seed, starting at position 0" condition.
func (j *Joiner) unambiNeiFor(seq *[]byte, beg int, first bool) int {
	oriL := len(*seq)
	if beg == 0 && first {
		j.ovlpScratch = j.ovlpScratch[:0]
		ret, _ := j.walker.IsContained(*seq, j.minMatch, &j.ovlpScratch)
		j.markWalked(j.ovlpScratch)
		if ret < 0 {
			if j.leftContained(*seq) {
				return -2
			}
			return -3
		}
	}

	j.ovlpScratch = j.ovlpScratch[:0]
	j.walker.Overlap(*seq, j.minMatch, oriL-1, beg, false, false, &j.ovlpScratch)
	j.markWalked(j.ovlpScratch)
	if len(j.ovlpScratch) == 0 {
		return -6
	}
	j.prev = j.prev[:0]
	for _, iv := range j.ovlpScratch {
		j.prev = append(j.prev, weighted{iv: iv})
	}

	var chosen byte
	var chosenPos int
	found := false
	for len(j.prev) > 0 && !found {
		var w [6]uint64
		j.curr = j.curr[:0]
		for _, p := range j.prev {
			ok := j.oracle.Extend(p.iv, false)
			if !ok[0].Empty() {
				j.setBits(ok[0])
			}
			for c := byte(0); c < 6; c++ {
				w[c] += ok[c].S
			}
			for c := byte(1); c <= 4; c++ {
				if !ok[c].Empty() {
					j.curr = append(j.curr, weighted{iv: ok[c]})
				}
			}
		}
		sum := w[1] + w[2] + w[3] + w[4]
		if sum == 0 {
			break
		}
		var max uint64
		var maxC byte
		for c := byte(1); c <= 4; c++ {
			if w[c] > max {
				max = w[c]
				maxC = c
			}
		}
		if float64(max) < dominanceRatio*float64(sum) || sum-max > dominanceSlack {
			return -7
		}
		chosen = maxC
		chosenPos = oriL - beg
		*seq = append(*seq, seqcode.Comp(chosen))
		found = true
		j.prev, j.curr = j.curr, j.prev
	}
	if !found {
		return -6
	}
	return j.confirmBackward(*seq, beg, chosenPos, chosen)
}

// confirmBackward replays the chosen extension backward from its new end
// to beg, requiring the same dominance rule to hold and the dominant
// backward symbol to match the one the forward pass already committed to
// seq - grounded on unambi_nei_for's second (backward) pass.
func (j *Joiner) confirmBackward(seq []byte, beg, chosenPos int, chosen byte) int {
	j.ovlpScratch = j.ovlpScratch[:0]
	j.walker.Overlap(seq, j.minMatch, len(seq)-1, beg, false, false, &j.ovlpScratch)
	j.markWalked(j.ovlpScratch)
	if len(j.ovlpScratch) == 0 {
		return -8
	}
	j.prev = j.prev[:0]
	for _, iv := range j.ovlpScratch {
		j.prev = append(j.prev, weighted{iv: iv})
	}
	var w [6]uint64
	for _, p := range j.prev {
		ok := j.oracle.Extend(p.iv, true)
		if !ok[0].Empty() {
			j.setBits(ok[0])
		}
		for c := byte(0); c < 6; c++ {
			w[c] += ok[c].S
		}
	}
	sum := w[1] + w[2] + w[3] + w[4]
	if sum == 0 {
		return -8
	}
	var max uint64
	var maxC byte
	for c := byte(1); c <= 4; c++ {
		if w[c] > max {
			max = w[c]
			maxC = c
		}
	}
	if float64(max) < dominanceRatio*float64(sum) || sum-max > dominanceSlack {
		return -8
	}
	if maxC != seqcode.Comp(chosen) {
		return -9
	}
	return chosenPos
}

func (j *Joiner) leftContained(seq []byte) bool {
	var scratch []fmindex.Interval
	ik := j.walker.Overlap(seq, j.minMatch, len(seq)-1, 0, false, false, &scratch)
	j.markWalked(scratch)
	ok := j.oracle.Extend(ik, true)
	return ik.S != ok[0].S
}

// Join1 drives the full bidirectional walk for one seed read (§4.E),
// grounded on neighbor1. If the forward walk stops with any code <= -6 (no
// overlap, or a forward or backward disagreement), the read is
// reverse-complemented and
// the same walk is retried in the other direction, matching the source's
// "only try the other direction once the first looks stuck" behavior.
func (j *Joiner) Join1(seedRid uint64) Outcome {
	if j.bits.Test(seedRid) {
		return Outcome{Rid: seedRid, Code: -10}
	}
	raw, _ := j.oracle.Retrieve(seedRid)
	seq := append([]byte(nil), raw...)
	seqcode.Reverse(seq)
	if len(seq) <= j.minMatch {
		return Outcome{Rid: seedRid, Code: -1}
	}

	beg := 0
	ret := j.unambiNeiFor(&seq, beg, true)
	for ret >= 0 {
		beg = ret
		ret = j.unambiNeiFor(&seq, beg, false)
	}
	if ret <= -6 {
		seqcode.ReverseComplementInplace(seq)
		beg = 0
		ret2 := j.unambiNeiFor(&seq, beg, true)
		for ret2 >= 0 {
			beg = ret2
			ret2 = j.unambiNeiFor(&seq, beg, false)
		}
		ret = ret2
	}
	return Outcome{Rid: seedRid, Code: ret, Begin: beg, Seq: seq}
}
