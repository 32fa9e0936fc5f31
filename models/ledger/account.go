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

// Role is the role an account was registered with.
type Role string

// Issuers can create listings, traders can only buy them.
const (
	RoleIssuer Role = "issuer"
	RoleTrader Role = "trader"
)

// Valid returns whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleIssuer || r == RoleTrader
}

// Account holds the credit balance of a registered participant.
type Account struct {
	ID      string `json:"id" cbor:"1,keyasint"`
	Role    Role   `json:"role" cbor:"2,keyasint"`
	Balance int64  `json:"balance" cbor:"3,keyasint"`
}

// Receipt is the result of a successful purchase.
type Receipt struct {
	ListingID string  `json:"listingId"`
	Seller    string  `json:"seller"`
	Buyer     string  `json:"buyer"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}
