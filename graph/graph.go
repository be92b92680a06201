// Package graph implements the assembly graph store (§4.F/§4.G): the
// Node/Arc vertex representation, its line-oriented text format, and the
// amender that rebuilds reciprocal arcs and prunes low-confidence or
// duplicate edges. It is grounded on original_source/mog.c.
package graph

import "github.com/BioinformaticsArchive/fermi/seqcode"

// Arc is one edge leaving a vertex endpoint: the endpoint ID it targets
// and the overlap length recorded for it. Ties during arc pruning break
// on this Len value (§4.G).
type Arc struct {
	Target uint64
	Len    int32
}

// Node is one vertex of the assembly graph: a unitig (or a joined
// sequence) with two endpoint IDs, its sequence and per-base coverage,
// and the arcs leaving each endpoint. Grounded on mog.c's fmnode_t.
type Node struct {
	K   [2]uint64
	Nsr int32
	Seq []byte // symbol codes 1..4 (A,C,G,T); never contains N or the sentinel
	Cov []byte
	Nei [2][]Arc
}

// Len returns the vertex's sequence length.
func (n *Node) Len() int { return len(n.Seq) }

// IsTip reports whether endpoint side j has no outgoing arcs.
func (n *Node) IsTip(j int) bool { return len(n.Nei[j]) == 0 }

// Graph is the in-memory assembly graph: an ordered list of vertices.
// Vertex index, not endpoint ID, is what array-based consumers (the
// endpoint hash built by Amend) address.
type Graph struct {
	Nodes []*Node
}

// ToBases decodes a Node's Seq into an ASCII string for display or
// output, matching mog_write1's "ACGT"[code-1] mapping.
func ToBases(codes []byte) []byte {
	out := make([]byte, len(codes))
	for i, c := range codes {
		out[i] = seqcode.CodeToBase[c]
	}
	return out
}
