package unitig

import (
	"github.com/BioinformaticsArchive/fermi/bitset"
	"github.com/BioinformaticsArchive/fermi/fmindex"
)

// candidate is one in-flight extension lineage inside getNei: the
// FM-interval it denotes, the position in seq at which its overlap began,
// and which category (branch lineage) it belongs to. A negative category
// marks a lineage that has already completed (folded into nei) or been
// pruned, and is skipped on the next round. This is the dedicated
// (interval, category) record spec.md §9 calls out in place of the
// source's info-field bit-packing.
type candidate struct {
	iv  fmindex.Interval
	pos int
	cat int32
}

// getNei is the category-bookkeeping neighbor search (§4.D.ii), grounded
// on fm6_get_nei. It walks forward from beg, tracking every overlap
// lineage still alive; lineages that reach a full, sentinel-bounded match
// are folded into e.neiBuf (deduplicated by category, keeping only the
// first representative of each), and lineages found to be contained
// inside the completed match are recorded into e.containedBuf.
//
// It returns the position rbeg at which the (unique) surviving neighbor's
// overlap began, or -1 if no neighbor was found at all. e.neiBuf holds
// zero, one, or more than one neighbor on return; the caller must check
// len(e.neiBuf) to tell "no overlap" apart from "ambiguous (>1)".
//
// seq is grown in place by one base per round while more than one
// category remains live, mirroring the source's speculative kputc; on
// return, if len(e.neiBuf) != 1 the caller must roll seq back to its
// length at entry (unitigUnidir does this once, after the whole walk
// ends, rather than after every call).
func (e *Extender) getNei(seq *[]byte, beg int) int {
	e.neiBuf = e.neiBuf[:0]
	e.containedBuf = e.containedBuf[:0]

	oriL := len(*seq)
	e.prevBuf = e.prevBuf[:0]
	e.containedOvlp = e.containedOvlp[:0]
	e.walker.Overlap(*seq, e.minMatch, oriL-1, beg, false, false, &e.containedOvlp)
	for _, iv := range e.containedOvlp {
		e.prevBuf = append(e.prevBuf, candidate{iv: iv, pos: int(iv.Info), cat: 0})
	}
	if len(e.prevBuf) == 0 {
		return -1
	}

	isForked := false
	for len(e.prevBuf) > 0 {
		e.currBuf = e.currBuf[:0]
		for _, p := range e.prevBuf {
			if p.cat < 0 {
				continue
			}
			ok := e.oracle.Extend(p.iv, false)
			if !ok[0].Empty() && oriL != len(*seq) {
				ok0 := e.oracle.Extend0(ok[0], true)
				if !ok0.Empty() {
					if ok[0].S == p.iv.S && p.iv.S == ok0.S {
						ok0.Info = uint64(oriL - p.pos)
						e.neiBuf = append(e.neiBuf, ok0)
						continue
					}
					e.setUsed(ok0)
					e.containedBuf = append(e.containedBuf, containedRead{iv: ok0, pos: oriL - p.pos, endLen: len(*seq)})
				}
			}
			for c := byte(1); c <= 4; c++ {
				if ok[c].Empty() {
					continue
				}
				ok0c := e.oracle.Extend0(ok[c], true)
				if ok0c.Empty() {
					continue
				}
				e.currBuf = append(e.currBuf, candidate{iv: ok[c], pos: p.pos, cat: int32(c)})
			}
		}
		if len(e.currBuf) > 0 {
			first := e.currBuf[0].cat
			*seq = growSeq(*seq, symComp(byte(first)))
			sortByCatThenPos(e.currBuf)
			last := e.currBuf[0].cat
			cat0 := int32(0)
			e.currBuf[0].cat = 0
			for j := 1; j < len(e.currBuf); j++ {
				if e.currBuf[j].cat != last {
					last = e.currBuf[j].cat
					cat0 = int32(j)
					isForked = true
				}
				e.currBuf[j].cat = cat0
			}
		}
		e.prevBuf, e.currBuf = e.currBuf, e.prevBuf
	}

	if len(e.neiBuf) == 0 {
		return -1
	}
	rbeg := oriL - int(e.neiBuf[0].Info)

	if len(e.neiBuf) == 1 && isForked {
		e.replaySurvivor(seq, rbeg, oriL)
	} else if len(e.neiBuf) > 1 {
		*seq = (*seq)[:oriL]
	}
	return rbeg
}

// replaySurvivor re-derives seq[oriL:] from the single surviving neighbor
// interval by a plain symbol-level forward walk, discarding whatever
// speculative bytes the category walk above appended (which may trace a
// lineage other than the eventual survivor once more than one category
// was briefly live). Grounded on fm6_get_nei's post-loop fix-up.
func (e *Extender) replaySurvivor(seq *[]byte, rbeg, oriL int) {
	target := e.neiBuf[0]
	ik := e.oracle.SetIntv(0)
	for i := rbeg; i < oriL; i++ {
		ok := e.oracle.Extend(ik, false)
		ik = ok[symComp((*seq)[i])]
	}
	i := oriL
	for {
		ok := e.oracle.Extend(ik, false)
		c0, n := -1, 0
		for c := 1; c <= 4; c++ {
			if !ok[c].Empty() && ok[c].K <= target.K && ok[c].K+ok[c].S >= target.K+target.S {
				n++
				c0 = c
			}
		}
		if n == 0 {
			break
		}
		if i < len(*seq) {
			(*seq)[i] = symComp(byte(c0))
		} else {
			*seq = append(*seq, symComp(byte(c0)))
		}
		ik = ok[c0]
		i++
	}
	*seq = (*seq)[:i]
}

func (e *Extender) setUsed(iv fmindex.Interval) {
	bitset.SetRange(e.used, iv.K, iv.L, iv.S)
}

// checkLeftSimple is the backward-branch confirmation walk (§4.D.i),
// grounded on check_left_simple: from rbeg back to beg, every surviving
// candidate must extend by exactly the one base seq already records, with
// no other base also matching to depth - otherwise the neighbor found
// going forward is not really unambiguous once you look backward from it.
func (e *Extender) checkLeftSimple(beg, rbeg int, seq []byte) int {
	var prev, curr []fmindex.Interval
	prev = prev[:0]
	e.walker.Overlap(seq, e.minMatch, rbeg, 0, true, true, &prev)
	for i := rbeg - 1; i >= beg; i-- {
		curr = curr[:0]
		for _, p := range prev {
			ok := e.oracle.Extend(p, true)
			if !ok[0].Empty() {
				bitset.SetRange(e.used, ok[0].K, ok[0].L, ok[0].S)
			}
			if ok[0].S+ok[seq[i]].S != p.S {
				return -1
			}
			curr = append(curr, ok[seq[i]])
		}
		prev, curr = curr, prev
	}
	return 0
}

// checkLeft wraps checkLeftSimple with a secondary confirmation: when the
// simple backward replay disagrees, the neighbor is instead re-walked
// forward starting from its own sequence, reverse-complemented, and the
// candidate is accepted only if that independent walk also finds a
// single neighbor. Grounded on check_left.
func (e *Extender) checkLeft(beg, rbeg int, seq []byte) int {
	if e.checkLeftSimple(beg, rbeg, seq) == 0 {
		return 0
	}
	savedNei := append([]fmindex.Interval(nil), e.neiBuf...)

	n := len(seq) - rbeg
	if cap(e.rcScratch) < n {
		e.rcScratch = make([]byte, n)
	}
	rc := e.rcScratch[:n]
	for i, j := rbeg, n-1; i < len(seq); i, j = i+1, j-1 {
		rc[j] = symComp(seq[i])
	}

	e.getNei(&rc, 0)
	ret := 0
	if len(e.neiBuf) != 1 {
		ret = -1
	}
	e.neiBuf = append(e.neiBuf[:0], savedNei...)
	return ret
}

func symComp(c byte) byte {
	if c == 0 {
		return 0
	}
	return 5 - c
}

func sortByCatThenPos(s []candidate) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func less(a, b candidate) bool {
	if a.cat != b.cat {
		return a.cat < b.cat
	}
	return a.pos < b.pos
}
