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

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optakt/credit-ledger/service/storage"
)

func TestEncodeKey(t *testing.T) {
	t.Run("prefix only", func(t *testing.T) {
		t.Parallel()

		got := storage.EncodeKey(storage.PrefixLast)
		assert.Equal(t, []byte{storage.PrefixLast}, got)
	})

	t.Run("height", func(t *testing.T) {
		t.Parallel()

		got := storage.EncodeKey(storage.PrefixBlock, uint64(258))
		assert.Equal(t, []byte{storage.PrefixBlock, 0, 0, 0, 0, 0, 0, 1, 2}, got)
	})

	t.Run("identifier", func(t *testing.T) {
		t.Parallel()

		got := storage.EncodeKey(storage.PrefixAccount, "abc")
		assert.Equal(t, []byte{storage.PrefixAccount, 'a', 'b', 'c'}, got)
	})

	t.Run("heights sort numerically", func(t *testing.T) {
		t.Parallel()

		low := storage.EncodeKey(storage.PrefixBlock, uint64(9))
		high := storage.EncodeKey(storage.PrefixBlock, uint64(10))
		assert.Less(t, string(low), string(high))
	})

	t.Run("unsupported segment", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			storage.EncodeKey(storage.PrefixBlock, 3.14)
		})
	})
}
