package worker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioinformaticsArchive/fermi/fermiasm"
	"github.com/BioinformaticsArchive/fermi/fmtestindex"
	"github.com/BioinformaticsArchive/fermi/unitig"
	"github.com/BioinformaticsArchive/fermi/worker"
)

func unitigStats(n, sum, sum2, unpaired uint64) unitig.Stats {
	return unitig.Stats{N: n, Sum: sum, Sum2: sum2, Unpaired: unpaired}
}

// TestRunUnitigBuildGraphNoSharedEndpoints exercises spec.md §8 invariant
// 2 end to end: across every emitted unitig, no two share an endpoint ID,
// and the amended graph it feeds into keeps the same vertex count.
func TestRunUnitigBuildGraphNoSharedEndpoints(t *testing.T) {
	o := fmtestindex.NewFromBases([]string{"AAACCCGGG", "CCCGGGTTT", "GGGTTTAAA", "ACGTACGTACGT"})
	opt := fermiasm.DefaultOpts()
	opt.MinMatch = 3
	opt.NThreads = 1

	result := worker.RunUnitig(o, opt, o.Mcnt()[1])
	seen := map[uint64]bool{}
	for _, n := range result.Nodes {
		for _, k := range n.K {
			assert.False(t, seen[k], "endpoint %d reused across unitigs", k)
			seen[k] = true
		}
	}

	g := worker.BuildGraph(result, nil)
	require.Len(t, g.Nodes, len(result.Nodes))
}

// TestInsertStatsCommutative exercises spec.md §8 invariant 7: merging
// per-worker (n, sum, sum2) accumulators is independent of how the
// accumulation was partitioned, since Stats.Add is commutative and
// associative.
func TestInsertStatsCommutative(t *testing.T) {
	a := unitigStats(3, 100, 4000, 1)
	b := unitigStats(5, 250, 15000, 2)
	c := unitigStats(0, 0, 0, 0)

	var merged1 = a
	merged1.Add(b)
	merged1.Add(c)

	var merged2 = c
	merged2.Add(b)
	merged2.Add(a)

	assert.Equal(t, merged1, merged2)
}
