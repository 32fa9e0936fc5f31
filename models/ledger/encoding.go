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
	"github.com/fxamacker/cbor/v2"
)

// Encoding returns the CBOR options used both for hashing payloads and for
// storing values. Canonical encoding guarantees that equal payloads always
// hash to the same digest.
func Encoding() cbor.EncOptions {
	options := cbor.CanonicalEncOptions()
	options.Time = cbor.TimeRFC3339Nano
	return options
}
