package saqconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saqlib/saqcore/internal/saqconfig"
)

func TestQuantizerConfig_ExBits(t *testing.T) {
	assert.Equal(t, uint8(0), saqconfig.QuantizerConfig{NumBits: 0}.ExBits())
	assert.Equal(t, uint8(3), saqconfig.QuantizerConfig{NumBits: 4}.ExBits())
	assert.Equal(t, uint8(0), saqconfig.QuantizerConfig{NumBits: 1}.ExBits())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := saqconfig.Load("SAQ_TEST_UNSET_PREFIX")
	assert.NoError(t, err)
	assert.Equal(t, float32(1.0), cfg.SearcherVarsBoundM)
}
