package graph

import (
	"math"

	"github.com/dgryski/go-farm"
)

// endpointMap resolves an endpoint ID to the (vertex index, side) pair
// that owns it, sharded by a farm hash the way the teacher repository's
// kmer index shards its k-mer table - grounded on fusion/kmer_index.go's
// farm.Hash64-keyed sharded map, repurposed here for endpoint IDs instead
// of k-mers.
type endpointMap struct {
	shards    []map[uint64]endpointLoc
	shardMask uint64
}

type endpointLoc struct {
	vertex int
	side   int
}

const noEndpoint = -1

func newEndpointMap(nShards int, sizeHint int) *endpointMap {
	if nShards <= 0 || nShards&(nShards-1) != 0 {
		nShards = 16
	}
	m := &endpointMap{shards: make([]map[uint64]endpointLoc, nShards), shardMask: uint64(nShards - 1)}
	per := sizeHint/nShards + 1
	for i := range m.shards {
		m.shards[i] = make(map[uint64]endpointLoc, per)
	}
	return m
}

func (m *endpointMap) shard(k uint64) map[uint64]endpointLoc {
	return m.shards[farm.Hash64([]byte{byte(k), byte(k >> 8), byte(k >> 16), byte(k >> 24), byte(k >> 32), byte(k >> 40), byte(k >> 48), byte(k >> 56)})&m.shardMask]
}

// buildEndpointHash maps every vertex endpoint ID to its (vertex,side)
// location, logging (and discarding the earlier entry for) any endpoint
// ID collision - grounded on mog.c's build_hash, whose khash insertion
// failure path logs at verbosity >= 2 and stores a sentinel.
func buildEndpointHash(nodes []*Node, logf func(format string, args ...interface{})) *endpointMap {
	m := newEndpointMap(16, len(nodes)*2)
	for i, n := range nodes {
		for j := 0; j < 2; j++ {
			sh := m.shard(n.K[j])
			if _, collision := sh[n.K[j]]; collision {
				if logf != nil {
					logf("duplicate endpoint id %d (vertex %d side %d)", n.K[j], i, j)
				}
				sh[n.K[j]] = endpointLoc{vertex: noEndpoint, side: 0}
				continue
			}
			sh[n.K[j]] = endpointLoc{vertex: i, side: j}
		}
	}
	return m
}

func (m *endpointMap) lookup(id uint64) (endpointLoc, bool) {
	loc, ok := m.shard(id)[id]
	return loc, ok && loc.vertex != noEndpoint
}

// Amend rebuilds every vertex's arc lists against the current vertex set
// (§4.G/§4.H): an arc whose target endpoint no longer resolves at all is
// dropped outright, while an arc whose target endpoint still exists but
// lacks a reciprocal arc pointing back is tombstoned in place - its
// Target is rewritten to math.MaxUint64 and the entry is kept, rather
// than deleted - so it survives de-duplication the way a dangling arc
// does in mog.c. Grounded on mog_amend, whose p->nei[j].a[l].x =
// (uint64_t)-1 rewrite marks an arc as severed without removing it from
// the array.
func Amend(g *Graph, logf func(format string, args ...interface{})) {
	hash := buildEndpointHash(g.Nodes, logf)
	for _, n := range g.Nodes {
		for side := 0; side < 2; side++ {
			kept := n.Nei[side][:0]
			for _, a := range n.Nei[side] {
				loc, ok := hash.lookup(a.Target)
				if !ok {
					continue
				}
				target := g.Nodes[loc.vertex]
				if !hasReciprocal(target.Nei[loc.side], n.K[side]) {
					a.Target = math.MaxUint64
					kept = append(kept, a)
					continue
				}
				kept = append(kept, a)
			}
			n.Nei[side] = rmdup(kept)
		}
	}
}

func hasReciprocal(arcs []Arc, id uint64) bool {
	for _, a := range arcs {
		if a.Target == id {
			return true
		}
	}
	return false
}
