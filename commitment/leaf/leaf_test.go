// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package leaf

import (
	"testing"

	"github.com/dexstate/statecommit/common"
	"github.com/shopspring/decimal"
)

var d = decimal.RequireFromString

func TestPriceLevelHash_EmptyLevelIsZeroHash(t *testing.T) {
	for _, price := range []string{"0", "1", "123.45", "-1"} {
		if got := PriceLevelHash(decimal.Zero, d(price)); !got.IsZero() {
			t.Errorf("empty level at price %s should hash to zero, got %v", price, got)
		}
	}
	if got := PriceLevelHash(d("0.000"), d("10")); !got.IsZero() {
		t.Errorf("zero size with scale should hash to zero, got %v", got)
	}
}

func TestPriceLevelHash_NonEmptyLevelIsNotZero(t *testing.T) {
	for _, size := range []string{"1", "0.0001", "1000"} {
		if got := PriceLevelHash(d(size), decimal.Zero); got.IsZero() {
			t.Errorf("level of size %s must not hash to zero", size)
		}
	}
}

func TestPriceLevelHash_HashesCanonicalText(t *testing.T) {
	want := common.Blake2b([]byte("1.5"), []byte("100"))
	if got := PriceLevelHash(d("1.50"), d("100.000")); want != got {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}
}

func TestAccountHash_EmptyAccountIsZeroHash(t *testing.T) {
	if got := AccountHash(decimal.Zero, decimal.Zero); !got.IsZero() {
		t.Errorf("empty account should hash to zero, got %v", got)
	}
	if got := AccountHash(d("0.00"), d("0.0000")); !got.IsZero() {
		t.Errorf("empty account with scale should hash to zero, got %v", got)
	}
}

func TestAccountHash_NonEmptyAccountIsNotZero(t *testing.T) {
	tests := []struct{ tradable, frozen string }{
		{"1", "0"},
		{"0", "1"},
		{"0.1", "0.2"},
	}
	for _, test := range tests {
		if got := AccountHash(d(test.tradable), d(test.frozen)); got.IsZero() {
			t.Errorf("account %v must not hash to zero", test)
		}
	}
}

func TestAccountHash_IsIndependentOfDecimalScale(t *testing.T) {
	want := AccountHash(d("1"), d("0"))
	if got := AccountHash(d("1.0"), d("0.00")); want != got {
		t.Errorf("equal balances at different scales hash differently: %v vs %v", want, got)
	}
	want = AccountHash(d("10.00"), d("0.5"))
	if got := AccountHash(decimal.New(10, 0), decimal.New(50, -2)); want != got {
		t.Errorf("equal balances at different scales hash differently: %v vs %v", want, got)
	}
}

func TestAccountHash_HashesCanonicalText(t *testing.T) {
	want := common.Blake2b([]byte("10"), []byte("0"))
	if got := AccountHash(d("10.00"), d("0")); want != got {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}
}

func TestAccountHash_FieldOrderMatters(t *testing.T) {
	if AccountHash(d("1"), d("2")) == AccountHash(d("2"), d("1")) {
		t.Errorf("swapping tradable and frozen must change the hash")
	}
}

func TestOrderHash_ZeroOrderIsNotZeroHash(t *testing.T) {
	if got := (OrderValue{}).Hash(); got.IsZero() {
		t.Errorf("zero order must not hash to zero")
	}
	if got := (OrderValue{}).Zero().Hash(); got.IsZero() {
		t.Errorf("zero order must not hash to zero")
	}
}

func TestOrderHash_HashesFieldsInFixedOrder(t *testing.T) {
	owner := common.Address{1, 2, 3}
	want := common.Blake2b(owner[:], []byte("2.5"), []byte("0.1"), []byte{1, 0, 0, 0})
	if got := OrderHash(owner, d("2.50"), d("0.10"), common.Bid); want != got {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}
}

func TestOrderHash_SideIsCommitted(t *testing.T) {
	ask := OrderValue{Amount: d("1"), Price: d("1"), Side: common.Ask}
	bid := OrderValue{Amount: d("1"), Price: d("1"), Side: common.Bid}
	if ask.Hash() == bid.Hash() {
		t.Errorf("orders on different sides must hash differently")
	}
}

func TestValues_ZeroHashMatchesEmptyLeaf(t *testing.T) {
	testZeroValue(t, PriceLevelValue{Size: d("1"), BestPrice: d("2")}, true)
	testZeroValue(t, AccountValue{Tradable: d("1")}, true)
	testZeroValue(t, OrderValue{Amount: d("1")}, false)
}

func testZeroValue[V Value[V]](t *testing.T, value V, elided bool) {
	t.Helper()
	zero := value.Zero()
	if want, got := elided, zero.Hash().IsZero(); want != got {
		t.Errorf("unexpected zero elision for %T, wanted %t, got %t", value, want, got)
	}
	if value.Hash().IsZero() {
		t.Errorf("non-zero value %v must not hash to zero", value)
	}
}

func TestValues_HashAgreesWithFunctions(t *testing.T) {
	level := PriceLevelValue{Size: d("3"), BestPrice: d("4.2")}
	if want, got := PriceLevelHash(level.Size, level.BestPrice), level.Hash(); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
	account := AccountValue{Tradable: d("5"), Frozen: d("5")}
	if want, got := AccountHash(account.Tradable, account.Frozen), account.Hash(); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
	order := OrderValue{Owner: common.Address{9}, Amount: d("1"), Price: d("2"), Side: common.Ask}
	if want, got := OrderHash(order.Owner, order.Amount, order.Price, order.Side), order.Hash(); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
}

func TestLeafHashes_MatchKnownAnswers(t *testing.T) {
	tests := map[string]struct {
		got  common.Hash
		want string
	}{
		"account": {
			AccountHash(d("10.00"), d("0")),
			"0x5aaabe445285ab26616660815dbad0411c5e24d3fcb3238465723e7966ff0e01",
		},
		"price level": {
			PriceLevelHash(d("1.50"), d("1e2")),
			"0xb075697f97d2d6b01f67defd6e17d3291526b0e7f80fec6c0d043359825c1666",
		},
	}
	for name, test := range tests {
		want, err := common.HashFromHex(test.want)
		if err != nil {
			t.Fatalf("invalid reference hash: %v", err)
		}
		if want != test.got {
			t.Errorf("unexpected %s hash, wanted %v, got %v", name, want, test.got)
		}
	}
}
