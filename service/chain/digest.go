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

package chain

import (
	"encoding/binary"
	"math/bits"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/optakt/credit-ledger/models/ledger"
)

// digest computes the block hash from its previous hash, timestamp, encoded
// payload and nonce.
func digest(previous ledger.Hash, timestamp time.Time, payload []byte, nonce uint64) ledger.Hash {
	var scratch [8]byte

	h := sha3.New256()
	_, _ = h.Write(previous[:])
	binary.BigEndian.PutUint64(scratch[:], uint64(timestamp.UnixNano()))
	_, _ = h.Write(scratch[:])
	_, _ = h.Write(payload)
	binary.BigEndian.PutUint64(scratch[:], nonce)
	_, _ = h.Write(scratch[:])

	var hash ledger.Hash
	copy(hash[:], h.Sum(nil))
	return hash
}

// LeadingZeros returns the number of leading zero bits of the hash.
func LeadingZeros(hash ledger.Hash) uint {
	var count uint
	for _, b := range hash {
		if b != 0 {
			return count + uint(bits.LeadingZeros8(b))
		}
		count += 8
	}
	return count
}
