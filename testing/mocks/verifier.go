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

package mocks

import (
	"testing"
)

type Verifier struct {
	VerifyFunc func() (uint64, error)
}

func BaselineVerifier(t *testing.T) *Verifier {
	t.Helper()

	v := Verifier{
		VerifyFunc: func() (uint64, error) {
			return 0, nil
		},
	}

	return &v
}

func (v *Verifier) Verify() (uint64, error) {
	return v.VerifyFunc()
}
