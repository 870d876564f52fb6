// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package amount defines the canonical textual form of decimal quantities.
//
// Balances, order amounts and prices are committed to the state tree by
// hashing their textual form. The text must therefore be a pure function of
// the decimal's magnitude, independent of the scale it happens to be stored
// with. The encoding produced by Canonical is:
//
//   - trailing zero digits are removed (1.00 -> "1", 0.100 -> "0.1"),
//   - zero is always "0", never "-0" and never with a decimal point,
//   - negative values carry a leading '-', positive values carry no sign,
//   - values without fraction are written as plain integers (1e3 -> "1000"),
//   - values with fraction use '.' and at least one integer digit (0.001 -> "0.001"),
//   - no exponent notation, no grouping separators, ASCII digits only.
package amount

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var ten = big.NewInt(10)

// Canonical returns the normalized textual encoding of the given decimal.
func Canonical(d decimal.Decimal) string {
	coefficient := d.Coefficient()
	exponent := d.Exponent()
	if coefficient.Sign() == 0 {
		return "0"
	}

	// Strip trailing zeros of the coefficient.
	negative := coefficient.Sign() < 0
	coefficient.Abs(coefficient)
	remainder := new(big.Int)
	for {
		quotient, rem := new(big.Int).QuoRem(coefficient, ten, remainder)
		if rem.Sign() != 0 {
			break
		}
		coefficient = quotient
		exponent++
	}

	digits := coefficient.String()
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if exponent >= 0 {
		b.WriteString(digits)
		for i := int32(0); i < exponent; i++ {
			b.WriteByte('0')
		}
		return b.String()
	}

	fractionLength := int(-exponent)
	if len(digits) > fractionLength {
		b.WriteString(digits[:len(digits)-fractionLength])
		b.WriteByte('.')
		b.WriteString(digits[len(digits)-fractionLength:])
		return b.String()
	}
	b.WriteString("0.")
	for i := len(digits); i < fractionLength; i++ {
		b.WriteByte('0')
	}
	b.WriteString(digits)
	return b.String()
}

// Bytes returns the canonical encoding of the given decimal as the bytes fed
// into hash functions.
func Bytes(d decimal.Decimal) []byte {
	return []byte(Canonical(d))
}
