package bitset_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioinformaticsArchive/fermi/bitset"
)

func TestSetAndTest(t *testing.T) {
	b := bitset.New(130)
	require.GreaterOrEqual(t, b.Len(), 130)
	assert.False(t, b.Test(5))
	b.Set(5)
	assert.True(t, b.Test(5))
	// Unrelated bits in the same word are untouched.
	assert.False(t, b.Test(4))
	assert.False(t, b.Test(6))
}

func TestTestAndSetReportsPriorState(t *testing.T) {
	b := bitset.New(64)
	assert.False(t, b.TestAndSet(10))
	assert.True(t, b.TestAndSet(10))
	assert.True(t, b.Test(10))
}

func TestSetRangeTouchesBothArms(t *testing.T) {
	b := bitset.New(64)
	bitset.SetRange(b, 0, 32, 4)
	for i := uint64(0); i < 4; i++ {
		assert.True(t, b.Test(i), "forward arm bit %d", i)
		assert.True(t, b.Test(32+i), "reverse arm bit %d", i)
	}
	assert.False(t, b.Test(4))
	assert.False(t, b.Test(36))
}

// TestConcurrentSet verifies the fetch-or discipline under
// concurrent writers: every bit set by some goroutine is observed set
// afterward, and no goroutine's write is lost.
func TestConcurrentSet(t *testing.T) {
	const n = 4096
	b := bitset.New(n)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := g; i < n; i += 8 {
				b.Set(uint64(i))
			}
		}()
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		assert.True(t, b.Test(uint64(i)), "bit %d", i)
	}
}
