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

type IssueResponse struct {
	Listing ledger.Listing `json:"listing"`
}

// VerifyResponse reports whether the chain is intact. When it is, Height is
// the height of the tip; otherwise, it is the height of the first broken
// block.
type VerifyResponse struct {
	Intact bool   `json:"intact"`
	Height uint64 `json:"height"`
}
