// Package saqconfig defines the quantizer and searcher configuration
// structs consumed by the estimators (spec §3, §6), bindable from the
// environment the same way the teacher's cmd/longbow config does.
package saqconfig

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/saqlib/saqcore/internal/saq"
)

// QuantizerConfig is immutable after construction (spec §3).
type QuantizerConfig struct {
	NumDimPad   int           `envconfig:"SAQ_NUM_DIM_PAD" default:"256"`
	NumBits     uint8         `envconfig:"SAQ_NUM_BITS" default:"4"`
	UseFastscan bool          `envconfig:"SAQ_USE_FASTSCAN" default:"true"`
	DistType    saq.DistType  `envconfig:"-"`
	HasRotator  bool          `envconfig:"-"`
}

// ExBits returns max(0, NumBits-1), the number of extended-precision bit
// planes stored per dimension.
func (c QuantizerConfig) ExBits() uint8 {
	if c.NumBits == 0 {
		return 0
	}
	return c.NumBits - 1
}

// SearcherConfig carries the per-query search behavior knobs (spec §6).
type SearcherConfig struct {
	DistType            saq.DistType `envconfig:"-"`
	SearcherVarsBoundM  float32      `envconfig:"SAQ_VARS_BOUND_M" default:"1.0"`
	UseFastscan         bool         `envconfig:"-"`
}

// Load populates a SearcherConfig from the process environment, the same
// envconfig-driven pattern the teacher binary uses for its own config.
func Load(prefix string) (SearcherConfig, error) {
	var cfg SearcherConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return SearcherConfig{}, err
	}
	return cfg, nil
}

// LoadQuantizer populates a QuantizerConfig from the process environment,
// mirroring Load for the fields QuantizerConfig tags for envconfig
// (SAQ_NUM_DIM_PAD/SAQ_NUM_BITS/SAQ_USE_FASTSCAN). DistType and HasRotator
// are tagged "-" and are returned as L2Sqr and false; callers typically
// set DistType from a separate SAQ_DIST_TYPE flag since it is not a plain
// envconfig-decodable type here.
func LoadQuantizer(prefix string) (QuantizerConfig, error) {
	cfg := QuantizerConfig{DistType: saq.L2Sqr}
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return QuantizerConfig{}, err
	}
	return cfg, nil
}
