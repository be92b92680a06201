package unitig

import (
	"github.com/BioinformaticsArchive/fermi/bitset"
	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/seqcode"
)

// unitigUnidir is the per-direction extension loop (§4.D), grounded on
// unitig_unidir: repeatedly ask getNei for the unique next neighbor,
// stopping at a forward bifurcation (more than one neighbor), a loop back
// to the seed or the running endpoint, or a backward bifurcation (the
// neighbor's own endpoint was already flagged, or checkLeft rejects it).
// seq and cov are grown in place as the walk commits each extension; on
// return both are trimmed back to their length when the last *committed*
// extension ended, undoing whatever a final, rejected getNei call
// spuriously appended.
func (e *Extender) unitigUnidir(seq, cov *[]byte, beg0 int, k0 uint64, end *uint64) {
	beg := beg0
	oriL := len(*seq)
	for {
		rbeg := e.getNei(seq, beg)
		if rbeg < 0 {
			break
		}
		if len(e.neiBuf) > 1 {
			e.bend.Set(*end)
			break
		}
		nei0 := e.neiBuf[0]
		// checkLeft may itself call getNei and overwrite e.containedBuf,
		// so snapshot this round's contained reads before calling it.
		containedThisRound := append([]containedRead(nil), e.containedBuf...)
		k := nei0.K
		if k == k0 {
			e.neiBuf = e.neiBuf[:0]
			break
		}
		if k == *end || nei0.L == *end {
			e.neiBuf = e.neiBuf[:0]
			break
		}
		if e.bend.Test(k) || e.checkLeft(beg, rbeg, *seq) < 0 {
			e.bend.Set(k)
			break
		}
		*end = nei0.L
		bitset.SetRange(e.used, nei0.K, nei0.L, nei0.S)
		if e.pairing {
			e.pairAdd(nei0, rbeg, len(*seq))
			for _, c := range containedThisRound {
				e.pairAdd(c.iv, c.pos, c.endLen)
			}
		}
		growCoverage(cov, rbeg, oriL, len(*seq))
		beg = rbeg
		oriL = len(*seq)
	}
	*seq = (*seq)[:oriL]
	*cov = (*cov)[:oriL]
}

// growCoverage extends the per-base coverage track to match a committed
// extension: positions in the freshly-confirmed overlap region [rbeg,
// oriL) were already covered by an earlier read and get a saturating
// increment, while positions past oriL are being seen for the first time
// and start at one observation. Grounded on unitig_unidir's cov->s[i]
// update loop.
func growCoverage(cov *[]byte, rbeg, oriL, newLen int) {
	for i := rbeg; i < oriL; i++ {
		seqcode.IncrementSaturating(*cov, i)
	}
	for i := oriL; i < newLen; i++ {
		*cov = append(*cov, seqcode.CovMin)
	}
}

// pairAdd folds one matched extension (or contained read) into the
// thread-local paired-read map, retiring a pair into the insert-size
// accumulator once both mates of a pair have been seen in the expected
// face-to-face orientation within maxISize of each other. Grounded on
// pair_add; read IDs are consumed directly as suffix-array ranks.
func (e *Extender) pairAdd(iv fmindex.Interval, beg, end int) {
	if !e.pairing {
		return
	}
	for i := uint64(0); i < iv.S; i++ {
		k := iv.K + i
		mateKey := (k >> 1) ^ 1
		if val, ok := e.pairMap[mateKey]; ok {
			if k&1 != 0 && val.Strand == 0 {
				l := end - val.End
				if l >= 0 && l < e.maxISize {
					e.stats.N++
					e.stats.Sum += uint64(l)
					e.stats.Sum2 += uint64(l) * uint64(l)
					delete(e.pairMap, mateKey)
					continue
				}
			}
			e.stats.Unpaired++
		}
		e.pairMap[k>>1] = pairEntry{Begin: beg, End: end, Strand: int(k & 1)}
	}
}

// flipSeq reverse-complements seq and cov together, keeping them aligned
// index-for-index, and re-expresses every pending paired-read map entry
// in the flipped coordinate frame. The source only reverse-complements
// the sequence and leaves the coverage track in its old order; this
// package instead keeps cov aligned with seq at every point (a documented
// simplification, not a behavioral requirement the spec calls out - see
// DESIGN.md).
func (e *Extender) flipSeq(seq, cov *[]byte) {
	l := len(*seq)
	seqcode.ReverseComplementInplace(*seq)
	reverseBytes(*cov)
	if e.pairing {
		flipped := make(map[uint64]pairEntry, len(e.pairMap))
		for k, v := range e.pairMap {
			flipped[k] = pairEntry{Begin: l - v.End, End: l - v.Begin, Strand: 1 - v.Strand}
		}
		e.pairMap = flipped
	}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Unitig1 processes one seed read (§4.D): retrieves and reverses it,
// rejects it outright if it is too short or already consumed by another
// seed's walk, tests it for containment, then extends left and right
// into the maximal unambiguous unitig. Grounded on unitig1.
func (e *Extender) Unitig1(seedRid uint64) Outcome {
	if e.pairing {
		for k := range e.pairMap {
			delete(e.pairMap, k)
		}
	}

	raw, canonical := e.oracle.Retrieve(seedRid)
	seq := append([]byte(nil), raw...)
	seqcode.Reverse(seq)
	seedLen := len(seq)
	if seedLen <= e.minMatch {
		return Outcome{Kind: TooShort}
	}
	if e.used.Test(canonical) {
		return Outcome{Kind: AlreadyUsed}
	}

	e.containedOvlp = e.containedOvlp[:0]
	ret, intv0 := e.walker.IsContained(seq, e.minMatch, &e.containedOvlp)
	bitset.SetRange(e.used, intv0.K, intv0.L, intv0.S)
	if ret < 0 {
		return Outcome{Kind: Contained}
	}

	cov := seqcode.NewCoverage(len(seq))
	if e.pairing {
		e.pairAdd(intv0, 0, len(seq))
	}

	end0, end1 := intv0.L, intv0.K

	e.unitigUnidir(&seq, &cov, 0, intv0.K, &end0)
	nei0 := copyNei(e.neiBuf)

	e.flipSeq(&seq, &cov)
	e.unitigUnidir(&seq, &cov, len(seq)-seedLen, intv0.L, &end1)
	nei1 := copyNei(e.neiBuf)

	set0 := e.visited.TestAndSet(end0)
	discard := set0
	if !set0 {
		discard = e.visited.TestAndSet(end1)
	}
	if discard {
		return Outcome{Kind: Discarded}
	}

	node := Node{
		K:   [2]uint64{end0, end1},
		Nsr: 1,
		Seq: seq,
		Cov: cov,
		Nei: [2][]Pair{nei0, nei1},
	}
	if e.pairing {
		node.Mapping = e.collectMapping()
	}
	return Outcome{Kind: Emitted, Node: node}
}

// copyNei copies every surviving candidate in nei into the vertex's arc
// set, matching copy_nei: a forward bifurcation (len(nei) > 1) records one
// arc per candidate, not just the unambiguous single-neighbor case.
func copyNei(nei []fmindex.Interval) []Pair {
	if len(nei) == 0 {
		return nil
	}
	out := make([]Pair, len(nei))
	for i, iv := range nei {
		out[i] = Pair{X: iv.K, Y: iv.Info}
	}
	return out
}

// collectMapping drains whatever paired-read entries are still pending
// when both extensions finish, for the graph layer to fold into an
// endpoint's later pair-distance refinement. The on-disk packing of
// (begin,end) into Y is this package's own choice (the routines this
// spec is grounded on never persist it; only the accumulated
// avg/std.dev summary in Stats is consumed downstream).
func (e *Extender) collectMapping() []Pair {
	if len(e.pairMap) == 0 {
		return nil
	}
	out := make([]Pair, 0, len(e.pairMap))
	for key, v := range e.pairMap {
		rid := key<<1 | uint64(v.Strand)
		out = append(out, Pair{X: rid, Y: uint64(uint32(v.Begin))<<32 | uint64(uint32(v.End))})
	}
	return out
}
