package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialNextID(t *testing.T) {
	var s Sequential

	assert.Equal(t, "C001", s.NextID("C", nil))
	assert.Equal(t, "C004", s.NextID("C", []string{"C001", "C003"}))
	assert.Equal(t, "P002", s.NextID("P", []string{"C009", "P001", "Pxyz", "P"}))
	assert.Equal(t, "D1000", s.NextID("D", []string{"D999"}))
	assert.Equal(t, "C011", s.NextID("C", []string{"C10", "C002"}))
}
