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

package ledger

import (
	"encoding/hex"
	"fmt"
	"time"
)

// HashSize is the size in bytes of a block hash.
const HashSize = 32

// Hash is the digest of a block. It is rendered as a hexadecimal string on
// the wire.
type Hash [HashSize]byte

// ZeroHash is the previous hash of the genesis block.
var ZeroHash = Hash{}

// String implements the Stringer interface.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != HashSize {
		return fmt.Errorf("invalid hash length (have: %d, want: %d)", hex.DecodedLen(len(text)), HashSize)
	}
	_, err := hex.Decode(h[:], text)
	if err != nil {
		return fmt.Errorf("could not decode hash: %w", err)
	}
	return nil
}

// Kind tags the record carried in a block payload.
type Kind string

// The following is an enumeration of all payload kinds.
const (
	KindGenesis  Kind = "genesis"
	KindIssuance Kind = "issuance"
	KindTransfer Kind = "transfer"
)

// Payload is the kind-tagged transaction record chained by a block. Issuance
// records use Issuer and Outcome, transfer records use Buyer and Seller.
type Payload struct {
	Kind      Kind    `json:"kind" cbor:"1,keyasint"`
	ListingID string  `json:"listingId,omitempty" cbor:"2,keyasint,omitempty"`
	Issuer    string  `json:"issuer,omitempty" cbor:"3,keyasint,omitempty"`
	Buyer     string  `json:"buyer,omitempty" cbor:"4,keyasint,omitempty"`
	Seller    string  `json:"seller,omitempty" cbor:"5,keyasint,omitempty"`
	Quantity  int64   `json:"quantity,omitempty" cbor:"6,keyasint,omitempty"`
	UnitPrice float64 `json:"unitPrice,omitempty" cbor:"7,keyasint,omitempty"`
	Outcome   Status  `json:"outcome,omitempty" cbor:"8,keyasint,omitempty"`
}

// Block is a single entry of the hash-chained ledger. Blocks are immutable
// once they have been appended.
type Block struct {
	Height       uint64    `json:"position" cbor:"1,keyasint"`
	Timestamp    time.Time `json:"timestamp" cbor:"2,keyasint"`
	Payload      Payload   `json:"payload" cbor:"3,keyasint"`
	PreviousHash Hash      `json:"previousHash" cbor:"4,keyasint"`
	Hash         Hash      `json:"hash" cbor:"5,keyasint"`
	Nonce        uint64    `json:"nonce" cbor:"6,keyasint"`
}
