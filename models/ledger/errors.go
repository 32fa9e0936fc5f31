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
	"errors"
)

// Sentinel errors for bad input.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidAccount = errors.New("invalid account identifier")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Sentinel errors for unknown entities.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownAccount = errors.New("unknown account")
	ErrUnknownListing = errors.New("unknown listing")
)

// Sentinel errors for requests that conflict with the current state.
var (
	ErrDuplicateAccount    = errors.New("duplicate account")
	ErrWrongRole           = errors.New("wrong role")
	ErrListingNotAvailable = errors.New("listing not available")
	ErrIllegalTransition   = errors.New("illegal listing transition")
	ErrSelfPurchase        = errors.New("buyer is the seller")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ErrIntegrity is returned when the hash chain is broken.
var ErrIntegrity = errors.New("chain integrity violated")

// Class groups errors by how the request layer should report them.
type Class uint8

// The following is an enumeration of all error classes.
const (
	ClassInternal Class = iota
	ClassValidation
	ClassNotFound
	ClassConflict
)

// Classify returns the class of the given error. Errors that match none of
// the sentinels are internal.
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidAccount),
		errors.Is(err, ErrInvalidConfig):
		return ClassValidation
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnknownAccount),
		errors.Is(err, ErrUnknownListing):
		return ClassNotFound
	case errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrWrongRole),
		errors.Is(err, ErrListingNotAvailable),
		errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrSelfPurchase),
		errors.Is(err, ErrInsufficientBalance):
		return ClassConflict
	default:
		return ClassInternal
	}
}
