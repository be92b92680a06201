// Package worker decomposes the unitig and join passes across a fixed
// pool of goroutines (§5), partitioning the seed read ID space the way
// original_source/unitig.c's fm6_unitig and join.c's fm6_unambi_join do,
// and merging each worker's accumulated statistics. Grounded on
// encoding/converter/convert.go's traverse.Each-based sharding.
package worker

import (
	"math"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/BioinformaticsArchive/fermi/bitset"
	"github.com/BioinformaticsArchive/fermi/fermiasm"
	"github.com/BioinformaticsArchive/fermi/fmindex"
	"github.com/BioinformaticsArchive/fermi/graph"
	"github.com/BioinformaticsArchive/fermi/join"
	"github.com/BioinformaticsArchive/fermi/unitig"
)

// UnitigResult is the output of a complete unitig construction pass: the
// emitted vertices (order is not meaningful - two runs may emit the same
// set in different orders depending on scheduling) and the merged
// insert-size statistics.
type UnitigResult struct {
	Nodes []unitig.Node
	Stats unitig.Stats
}

// RunUnitig partitions the odd-numbered read IDs in [0, nReads) into
// opt.NThreads contiguous chunks, one per goroutine, and runs unitig
// construction over each (§4.D). Only odd IDs are used as seeds because
// the index pairs each read with its reverse complement at adjacent IDs
// (id^1); starting only from odd IDs still reaches every unitig, since
// Unitig1 retrieves the read reversed and walks both directions.
// Grounded on fm6_unitig's thread partitioning.
func RunUnitig(o fmindex.Oracle, opt fermiasm.Opts, nReads uint64) UnitigResult {
	used := bitset.New(int(nReads))
	bend := bitset.New(int(nReads))
	visited := bitset.New(int(nReads))

	n := opt.NThreads
	if n <= 0 {
		n = 1
	}
	chunk := (nReads/2 + uint64(n) - 1) / uint64(n) * 2

	var mu sync.Mutex
	var nodes []unitig.Node
	var total unitig.Stats

	_ = traverse.Each(n, func(i int) error {
		start := uint64(i) * chunk
		end := start + chunk
		if start%2 == 0 {
			start++
		}
		if end > nReads {
			end = nReads
		}
		if start >= end {
			return nil
		}
		ext := unitig.NewExtender(o, opt.MinMatch, opt.MaxISize, used, bend, visited, true)
		var local []unitig.Node
		for rid := start; rid < end; rid += 2 {
			out := ext.Unitig1(rid)
			if out.Kind == unitig.Emitted {
				local = append(local, out.Node)
			}
		}
		mu.Lock()
		nodes = append(nodes, local...)
		total.Add(ext.Stats())
		mu.Unlock()
		return nil
	})

	if total.N > 0 {
		mean := float64(total.Sum) / float64(total.N)
		variance := float64(total.Sum2)/float64(total.N) - mean*mean
		if variance < 0 {
			variance = 0
		}
		log.Info.Printf("avg=%.2f std.dev=%.2f #unpaired=%d", mean, math.Sqrt(variance), total.Unpaired)
	} else {
		log.Info.Printf("avg=0.00 std.dev=0.00 #unpaired=%d", total.Unpaired)
	}

	return UnitigResult{Nodes: nodes, Stats: total}
}

// RunJoin partitions [0, nReads) across opt.NThreads goroutines in a
// strided fashion (worker i visits i, i+NThreads, i+2*NThreads, ...),
// grounded on fm6_unambi_join's thread partitioning, and runs the
// unambiguous joiner over every seed.
func RunJoin(o fmindex.Oracle, opt fermiasm.Opts, nReads uint64) []join.Outcome {
	bits := bitset.New(int(nReads))
	n := opt.NThreads
	if n <= 0 {
		n = 1
	}

	var mu sync.Mutex
	var out []join.Outcome
	var cnt, tot uint64

	_ = traverse.Each(n, func(i int) error {
		j := join.NewJoiner(o, opt.MinMatch, bits)
		var local []join.Outcome
		for rid := uint64(i); rid < nReads; rid += uint64(n) {
			local = append(local, j.Join1(rid))
		}
		newlySet, total := j.Counts()
		mu.Lock()
		out = append(out, local...)
		cnt += newlySet
		tot += total
		mu.Unlock()
		return nil
	})

	if tot > 0 {
		log.Info.Printf("join: %d/%d reads newly claimed (%.1f%%)", cnt, tot, 100*float64(cnt)/float64(tot))
	}
	return out
}

// BuildGraph converts a unitig construction result into graph vertices
// and amends the resulting graph's arcs in place (§4.F/§4.G). Mapping
// each unitig's Nei entries to graph.Arc assumes endpoint IDs and arc
// lengths carry over unchanged, since both packages share the same
// endpoint ID space.
func BuildGraph(result UnitigResult, logf func(format string, args ...interface{})) *graph.Graph {
	g := &graph.Graph{Nodes: make([]*graph.Node, len(result.Nodes))}
	for i := range result.Nodes {
		n := &result.Nodes[i]
		g.Nodes[i] = &graph.Node{
			K:   n.K,
			Nsr: n.Nsr,
			Seq: n.Seq,
			Cov: n.Cov,
			Nei: [2][]graph.Arc{toArcs(n.Nei[0]), toArcs(n.Nei[1])},
		}
	}
	graph.Amend(g, logf)
	return g
}

func toArcs(pairs []unitig.Pair) []graph.Arc {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]graph.Arc, len(pairs))
	for i, p := range pairs {
		out[i] = graph.Arc{Target: p.X, Len: int32(p.Y)}
	}
	return out
}
