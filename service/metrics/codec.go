// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Compressor is a codec that exposes its encoding and compression steps.
type Compressor interface {
	ledger.Codec
	Encode(value interface{}) ([]byte, error)
	Compress(data []byte) ([]byte, error)
}

// Codec wraps a codec and records the encoded and compressed sizes of the
// values it marshals.
type Codec struct {
	Compressor
	encoded    *prometheus.CounterVec
	compressed *prometheus.CounterVec
}

func NewCodec(codec Compressor, reg prometheus.Registerer) *Codec {

	factory := promauto.With(reg)

	encoded := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codec_encoded_bytes_total",
		Help:      "number of bytes produced by encoding, by value type",
	}, []string{"type"})

	compressed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codec_compressed_bytes_total",
		Help:      "number of bytes produced by compression, by value type",
	}, []string{"type"})

	c := Codec{
		Compressor: codec,
		encoded:    encoded,
		compressed: compressed,
	}

	return &c
}

func (c *Codec) Marshal(value interface{}) ([]byte, error) {
	data, err := c.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}
	compressed, err := c.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("could not compress data: %w", err)
	}
	name := "unknown"
	switch value.(type) {
	case uint64:
		name = "height"
	case ledger.Block:
		name = "block"
	case ledger.Account:
		name = "account"
	}
	c.encoded.WithLabelValues(name).Add(float64(len(data)))
	c.compressed.WithLabelValues(name).Add(float64(len(compressed)))
	return compressed, nil
}
