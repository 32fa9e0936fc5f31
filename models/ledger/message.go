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

// Topic identifies which projection a pushed message carries.
type Topic string

// The following is an enumeration of all pushed projections.
const (
	TopicChain       Topic = "chain"
	TopicMarketplace Topic = "marketplace"
	TopicBalance     Topic = "balance"
)

// Message is a projection pushed to observers. Payload is a []Block for the
// chain topic, a []Listing for the marketplace topic and a []BalanceDelta for
// the balance topic.
type Message struct {
	Topic   Topic       `json:"kind"`
	Payload interface{} `json:"payload"`
}

// BalanceDelta reports the new balance of an account and by how much the last
// mutation changed it.
type BalanceDelta struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
	Delta   int64  `json:"delta"`
}

// Observer is an external consumer of pushed messages.
type Observer interface {
	ID() string
	Send(message Message) error
	Close() error
}
