// Package fmtestindex provides a brute-force fmindex.Oracle for tests.
// Building a real index is out of scope for this module (see
// SPEC_FULL.md §1); this package stands in for one by enumerating
// occurrences directly rather than through any compressed rank
// structure, trading performance for being obviously correct against a
// small, hand-written read set.
//
// It assumes the supplied reads contain no two sequences (or a sequence
// and another's reverse complement) that are byte-identical - see
// New's doc comment for the consequence of violating it.
package fmtestindex

import (
	"sort"
	"sync"

	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/seqcode"
)

type ref struct {
	doc, pos int
}

type state struct {
	members    []ref
	matchedLen int
}

// Oracle is a brute-force, in-memory fmindex.Oracle over a fixed read
// set. It is safe for concurrent use once constructed: every
// SetIntv/Extend/Extend0 call registers tokens in a shared registry, and
// that registry is guarded by a mutex.
type Oracle struct {
	docs     [][]byte
	mu       sync.Mutex
	registry map[uint64]*state
	next     uint64
}

// New builds an Oracle over reads (each a symbol-code slice of A/C/G/T
// codes, no sentinel). Every read's reverse complement is stored
// alongside it as a second document; read IDs are dense over
// [0, 2*len(reads)), with even/odd IDs being a forward/revcomp pair.
//
// If two reads (or a read and another's reverse complement) are
// byte-identical, any full-length match against both collapses to a
// single opaque token rather than a usable contiguous read-ID range,
// and algorithms that mark such a range used (§5) will not mark the
// individual duplicate IDs - construct test fixtures with distinct
// reads to avoid this.
func New(reads [][]byte) *Oracle {
	docs := make([][]byte, 0, len(reads)*2)
	for _, r := range reads {
		fwd := append([]byte(nil), r...)
		rc := make([]byte, len(r))
		seqcode.ReverseComplement(rc, r)
		docs = append(docs, fwd, rc)
	}
	return &Oracle{
		docs:     docs,
		registry: make(map[uint64]*state),
		next:     uint64(len(docs)) * 4,
	}
}

// NewFromBases builds an Oracle from plain ASCII sequences.
func NewFromBases(seqs []string) *Oracle {
	reads := make([][]byte, len(seqs))
	for i, s := range seqs {
		codes := make([]byte, len(s))
		seqcode.EncodeSeq(codes, []byte(s))
		reads[i] = codes
	}
	return New(reads)
}

func (o *Oracle) register(members []ref, matchedLen int) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	tok := o.next
	o.next++
	cp := append([]ref(nil), members...)
	o.registry[tok] = &state{members: cp, matchedLen: matchedLen}
	return tok
}

func (o *Oracle) resolve(token uint64) ([]ref, int) {
	if token < uint64(len(o.docs)) {
		return []ref{{doc: int(token), pos: 0}}, len(o.docs[token])
	}
	o.mu.Lock()
	st := o.registry[token]
	o.mu.Unlock()
	return st.members, st.matchedLen
}

// Mcnt implements fmindex.Oracle.
func (o *Oracle) Mcnt() [6]uint64 {
	var m [6]uint64
	for _, d := range o.docs {
		for _, c := range d {
			m[c]++
		}
	}
	m[1] = uint64(len(o.docs))
	return m
}

// SetIntv implements fmindex.Oracle.
func (o *Oracle) SetIntv(c byte) fmindex.Interval {
	if c == seqcode.Sentinel {
		members := make([]ref, len(o.docs))
		for i := range o.docs {
			members[i] = ref{doc: i, pos: 0}
		}
		k := o.register(members, 0)
		l := o.register(append([]ref(nil), members...), 0)
		return fmindex.Interval{K: k, L: l, S: uint64(len(members))}
	}
	kMembers := o.scan(c)
	lMembers := o.scan(seqcode.Comp(c))
	k := o.promote(kMembers, 1)
	l := o.promote(lMembers, 1)
	return fmindex.Interval{K: k, L: l, S: uint64(len(kMembers))}
}

func (o *Oracle) scan(c byte) []ref {
	var out []ref
	for d, bytes := range o.docs {
		for p, b := range bytes {
			if b == c {
				out = append(out, ref{doc: d, pos: p})
			}
		}
	}
	return out
}

// Extend implements fmindex.Oracle.
func (o *Oracle) Extend(iv fmindex.Interval, backward bool) [6]fmindex.Interval {
	kMembers, kLen := o.resolve(iv.K)
	lMembers, _ := o.resolve(iv.L)

	var out [6]fmindex.Interval
	for c := byte(0); c < 6; c++ {
		newK := o.extendMembers(kMembers, kLen, c, backward)
		var newL []ref
		if c == seqcode.Sentinel {
			newL = o.extendMembers(lMembers, kLen, seqcode.Sentinel, !backward)
		} else {
			newL = o.extendMembers(lMembers, kLen, seqcode.Comp(c), !backward)
		}
		if len(newK) == 0 || len(newL) == 0 {
			continue
		}
		newLen := kLen
		if c != seqcode.Sentinel {
			newLen = kLen + 1
		}
		kTok := o.promote(newK, newLen)
		lTok := o.promote(newL, newLen)
		out[c] = fmindex.Interval{K: kTok, L: lTok, S: uint64(len(newK))}
	}
	return out
}

// Extend0 implements fmindex.Oracle.
func (o *Oracle) Extend0(iv fmindex.Interval, backward bool) fmindex.Interval {
	return o.Extend(iv, backward)[seqcode.Sentinel]
}

// Retrieve implements fmindex.Oracle.
func (o *Oracle) Retrieve(rid uint64) ([]byte, uint64) {
	seq := append([]byte(nil), o.docs[rid]...)
	canonical := rid &^ 1
	return seq, canonical
}

func (o *Oracle) extendMembers(members []ref, matchedLen int, c byte, backward bool) []ref {
	var out []ref
	for _, m := range members {
		doc := o.docs[m.doc]
		if backward {
			if c == seqcode.Sentinel {
				if m.pos == 0 {
					out = append(out, m)
				}
				continue
			}
			if m.pos > 0 && doc[m.pos-1] == c {
				out = append(out, ref{doc: m.doc, pos: m.pos - 1})
			}
		} else {
			if c == seqcode.Sentinel {
				if m.pos+matchedLen == len(doc) {
					out = append(out, m)
				}
				continue
			}
			if m.pos+matchedLen < len(doc) && doc[m.pos+matchedLen] == c {
				out = append(out, m)
			}
		}
	}
	return out
}

// promote assigns a real read ID to a singleton, full-length match
// (pos == 0 and the match spans the whole document), and an opaque
// registry token otherwise.
func (o *Oracle) promote(members []ref, matchedLen int) uint64 {
	if len(members) == 1 && members[0].pos == 0 && matchedLen == len(o.docs[members[0].doc]) {
		return uint64(members[0].doc)
	}
	return o.register(members, matchedLen)
}

// sortedReadIDs is a small test helper returning every read ID in order,
// useful for building a deterministic seed iteration in package tests.
func sortedReadIDs(n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
