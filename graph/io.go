package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BioinformaticsArchive/fermi/fermiasm"
	"github.com/BioinformaticsArchive/fermi/seqcode"
)

// WriteNode emits one vertex in the graph's line-oriented text format
// (§4.F), grounded on mog_write1:
//
//	@<k0>:<k1>\t<nsr>\t<nei0>\t<nei1>
//	<ACGT sequence>
//	+
//	<coverage>
func WriteNode(w io.Writer, n *Node) error {
	if _, err := fmt.Fprintf(w, "@%d:%d\t%d\t%s\t%s\n", n.K[0], n.K[1], n.Nsr, neiField(n.Nei[0]), neiField(n.Nei[1])); err != nil {
		return err
	}
	if _, err := w.Write(ToBases(n.Seq)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n+\n"); err != nil {
		return err
	}
	if _, err := w.Write(n.Cov); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func neiField(nei []Arc) string {
	if len(nei) == 0 {
		return "."
	}
	var sb strings.Builder
	for _, a := range nei {
		fmt.Fprintf(&sb, "%d,%d;", a.Target, a.Len)
	}
	return sb.String()
}

// ReadGraph parses a sequence of WriteNode records (§4.F/§4.G). It
// reproduces mog_read's neighbor-list dominance filter exactly, including
// its off-by-one bookkeeping bug (see applyDominanceFilter below), applies
// the MinDRatio0 cutoff, de-duplicates and caps each endpoint's arc list
// per opt.MaxArc, and drops single-read tips shorter than opt.MinEl when
// opt.Flag has FlagDropTip0 set - matching mog_read's vertex filter.
func ReadGraph(r io.Reader, opt fermiasm.Opts) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<24)
	g := &Graph{}
	for sc.Scan() {
		header := sc.Text()
		if header == "" {
			continue
		}
		if header[0] != '@' {
			return nil, fmt.Errorf("graph: expected '@' header, got %q", header)
		}
		n, err := parseNode(header, sc, opt)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseNode(header string, sc *bufio.Scanner, opt fermiasm.Opts) (*Node, error) {
	fields := strings.Split(header[1:], "\t")
	if len(fields) != 4 {
		return nil, fmt.Errorf("graph: malformed header %q", header)
	}
	kk := strings.SplitN(fields[0], ":", 2)
	if len(kk) != 2 {
		return nil, fmt.Errorf("graph: malformed endpoint pair %q", fields[0])
	}
	k0, err := strconv.ParseUint(kk[0], 10, 64)
	if err != nil {
		return nil, err
	}
	k1, err := strconv.ParseUint(kk[1], 10, 64)
	if err != nil {
		return nil, err
	}
	nsr, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return nil, err
	}
	nei0, err := parseNeiField(fields[2], opt)
	if err != nil {
		return nil, err
	}
	nei1, err := parseNeiField(fields[3], opt)
	if err != nil {
		return nil, err
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("graph: missing sequence line")
	}
	seqLine := sc.Bytes()
	seq := make([]byte, len(seqLine))
	seqcode.EncodeSeq(seq, seqLine)

	if !sc.Scan() || sc.Text() != "+" {
		return nil, fmt.Errorf("graph: missing '+' separator")
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("graph: missing coverage line")
	}
	cov := append([]byte(nil), sc.Bytes()...)

	n := &Node{
		K:   [2]uint64{k0, k1},
		Nsr: int32(nsr),
		Seq: seq,
		Cov: cov,
		Nei: [2][]Arc{nei0, nei1},
	}

	if opt.Has(fermiasm.FlagDropTip0) && (n.IsTip(0) || n.IsTip(1)) && n.Len() < opt.MinEl && n.Nsr == 1 {
		return nil, nil
	}
	return n, nil
}

// parseNeiField parses one side's "target,len;target,len;..." field and
// applies the dominance filter, rmdup and cap.
func parseNeiField(field string, opt fermiasm.Opts) ([]Arc, error) {
	if field == "." {
		return nil, nil
	}
	parts := strings.Split(strings.TrimSuffix(field, ";"), ";")
	arcs := make([]Arc, 0, len(parts))
	for _, p := range parts {
		kv := strings.SplitN(p, ",", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("graph: malformed arc %q", p)
		}
		target, err := strconv.ParseUint(kv[0], 10, 64)
		if err != nil {
			return nil, err
		}
		length, err := strconv.ParseInt(kv[1], 10, 32)
		if err != nil {
			return nil, err
		}
		arcs = append(arcs, Arc{Target: target, Len: int32(length)})
	}
	applyDominanceFilter(arcs, opt.MinDRatio0)
	arcs = removeDeleted(arcs)
	arcs = rmdup(arcs)
	arcs = capArcs(arcs, opt.MaxArc)
	return arcs, nil
}

// applyDominanceFilter marks arcs below the dominance threshold deleted
// (Len = 0) in place. It reproduces mog_read's max/max2 tracking exactly
// as observed rather than as apparently intended: the statement
//
//	if (max < r->y) max = max2, max = r->y;
//
// never actually shifts the outgoing max into max2 (max is immediately
// overwritten again by r->y in the same comma expression), so max2 is
// only ever updated by the `else if (max2 < r->y) max2 = r->y` branch -
// i.e. it only tracks the largest value seen among entries that were
// never themselves a new running maximum. See DESIGN.md.
func applyDominanceFilter(arcs []Arc, minDRatio0 float64) {
	var max, max2 int32
	for _, a := range arcs {
		if max < a.Len {
			max = a.Len
		} else if max2 < a.Len {
			max2 = a.Len
		}
	}
	threshold := int32(float64(max2)*minDRatio0 + 0.499)
	for i := range arcs {
		if arcs[i].Len < threshold {
			arcs[i].Len = 0
		}
	}
}

func removeDeleted(arcs []Arc) []Arc {
	out := arcs[:0]
	for _, a := range arcs {
		if a.Len != 0 {
			out = append(out, a)
		}
	}
	return out
}

// rmdup sorts by target and drops later duplicates of the same target,
// grounded on v128_rmdup.
func rmdup(arcs []Arc) []Arc {
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].Target < arcs[j].Target })
	out := arcs[:0]
	var lastTarget uint64
	haveLast := false
	for _, a := range arcs {
		if haveLast && a.Target == lastTarget {
			continue
		}
		out = append(out, a)
		lastTarget = a.Target
		haveLast = true
	}
	return out
}

// capArcs sorts by length descending and keeps every arc at or above the
// length of the maxArc'th entry (so ties at the boundary all survive),
// grounded on v128_cap.
func capArcs(arcs []Arc, maxArc int) []Arc {
	if len(arcs) <= maxArc {
		return arcs
	}
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].Len > arcs[j].Len })
	threshold := arcs[maxArc-1].Len
	out := arcs[:0]
	for _, a := range arcs {
		if a.Len >= threshold {
			out = append(out, a)
		}
	}
	return out
}
