package fermiasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BioinformaticsArchive/fermi/fermiasm"
)

func TestDefaultOpts(t *testing.T) {
	o := fermiasm.DefaultOpts()
	assert.Equal(t, 31, o.MinMatch)
	assert.Equal(t, 1, o.NThreads)
	assert.Equal(t, 512, o.MaxArc)
	assert.Equal(t, 300, o.MinEl)
	assert.Equal(t, 0.7, o.MinDRatio0)
	assert.Equal(t, 1000, o.MaxISize)
	assert.True(t, o.Has(fermiasm.FlagDropTip0))
}

func TestHasRespectsClearedFlag(t *testing.T) {
	o := fermiasm.DefaultOpts()
	o.Flag = 0
	assert.False(t, o.Has(fermiasm.FlagDropTip0))
}
