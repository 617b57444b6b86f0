// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.

package matrix_test

import "math"

// nan returns a quiet NaN without tripping vet's constant checks.
func nan() float64 { return math.NaN() }
