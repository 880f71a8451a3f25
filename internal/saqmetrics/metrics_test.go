package saqmetrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saqlib/saqcore/internal/saqmetrics"
)

func TestQueryRuntimeMetrics_AddFastAndAddAccurateAccumulate(t *testing.T) {
	var m saqmetrics.QueryRuntimeMetrics
	m.AddFast(100)
	m.AddAccurate(50)
	m.AddFast(25)

	assert.Equal(t, uint64(125), m.FastBitsum)
	assert.Equal(t, uint64(50), m.AccBitsum)
	assert.Equal(t, uint64(3), m.TotalCompCnt)
}
