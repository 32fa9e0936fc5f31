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

package rest

import (
	"github.com/optakt/credit-ledger/models/ledger"
)

type RegisterRequest struct {
	ID   string      `json:"id" validate:"required"`
	Role ledger.Role `json:"role" validate:"required,oneof=issuer trader"`
}

type IssueRequest struct {
	Issuer    string  `json:"issuer" validate:"required"`
	Quantity  int64   `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gt=0"`
}

type PurchaseRequest struct {
	Buyer string `json:"buyer" validate:"required"`
}
