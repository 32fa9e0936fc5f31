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

// Codec encodes values for storage in the archive.
type Codec interface {
	Marshal(value interface{}) ([]byte, error)
	Unmarshal(data []byte, value interface{}) error
}

// Writer persists blocks and accounts to the archive.
type Writer interface {
	Block(block Block) error
	Account(account Account) error
}

// Reader reads blocks and accounts back from the archive.
type Reader interface {
	Last() (uint64, error)
	Block(height uint64) (Block, error)
	Blocks() ([]Block, error)
	Account(id string) (Account, error)
	Accounts() ([]Account, error)
}
