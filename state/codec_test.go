// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/klauspost/compress/zlib"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testParams() orderbook.Params {
	return orderbook.Params{
		BaseScale:  3,
		QuoteScale: 3,
		TakerFee:   decimal.New(1, -3),
		MakerFee:   decimal.New(1, -3),
		MinAmount:  decimal.New(1, -3),
		MinVolume:  decimal.New(1, 0),
	}
}

func newTestData(t *testing.T) *Data {
	t.Helper()
	data := NewData()
	book := orderbook.New(testParams())
	orders := []orderbook.Order{
		{Id: 1, Owner: common.Address{1}, Side: common.Ask, Price: dec("10.5"), Amount: dec("2")},
		{Id: 2, Owner: common.Address{2}, Side: common.Ask, Price: dec("10.5"), Amount: dec("0.25")},
		{Id: 3, Owner: common.Address{1}, Side: common.Bid, Price: dec("9.75"), Amount: dec("1.000")},
	}
	for _, order := range orders {
		if err := book.Insert(order); err != nil {
			t.Fatalf("failed to insert order: %v", err)
		}
	}
	data.OrderBooks[common.Symbol{Base: 101, Quote: 100}] = book
	data.OrderBooks[common.Symbol{Base: 102, Quote: 100}] = orderbook.New(testParams())
	data.Accounts.Set(common.Address{1}, 100, Account{Tradable: dec("10.00"), Frozen: dec("2")})
	data.Accounts.Set(common.Address{1}, 101, Account{Tradable: dec("0"), Frozen: dec("2")})
	data.Accounts.Set(common.Address{2}, 101, Account{Tradable: dec("-1.5"), Frozen: dec("0.25")})
	return data
}

func roundTrip(t *testing.T, data *Data) *Data {
	t.Helper()
	var buffer bytes.Buffer
	if err := Encode(&buffer, data); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	res, err := Decode(&buffer)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return res
}

func TestCodec_RoundTripPreservesData(t *testing.T) {
	data := newTestData(t)
	if got := roundTrip(t, data); !data.Equal(got) {
		t.Errorf("decoded data differs from original")
	}
}

func TestCodec_EmptyDataRoundTrip(t *testing.T) {
	data := NewData()
	if got := roundTrip(t, data); !data.Equal(got) {
		t.Errorf("decoded data differs from original")
	}
}

func TestCodec_SingleEmptyOrderBookRoundTrip(t *testing.T) {
	data := NewData()
	data.OrderBooks[common.Symbol{Base: 101, Quote: 100}] = orderbook.New(testParams())
	got := roundTrip(t, data)
	if !data.Equal(got) {
		t.Errorf("decoded data differs from original")
	}
	if len(got.Accounts) != 0 {
		t.Errorf("unexpected accounts in decoded data")
	}
}

func TestCodec_UserWithoutBalancesIsPreserved(t *testing.T) {
	data := newTestData(t)
	data.Accounts[common.Address{7}] = map[common.Currency]Account{}
	delete(data.Accounts[common.Address{2}], 101)

	got := roundTrip(t, data)
	if want, got := len(data.Accounts), len(got.Accounts); want != got {
		t.Fatalf("unexpected number of users, wanted %d, got %d", want, got)
	}
	for _, user := range []common.Address{{2}, {7}} {
		balances, found := got.Accounts[user]
		if !found {
			t.Errorf("user %v is missing", user)
		}
		if len(balances) != 0 {
			t.Errorf("user %v should hold no balances, got %v", user, balances)
		}
	}
	if !data.Equal(got) {
		t.Errorf("decoded data differs from original")
	}
}

func TestCodec_DuplicateEntriesAreDetected(t *testing.T) {
	zero, err := decimal.Zero.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode decimal: %v", err)
	}
	balance := encodedBalance{Currency: 1, Tradable: zero, Frozen: zero}
	bodies := map[string]*encodedData{
		"user": {Users: []encodedUser{
			{Owner: common.Address{1}},
			{Owner: common.Address{1}},
		}},
		"balance": {Users: []encodedUser{
			{Owner: common.Address{1}, Balances: []encodedBalance{balance, balance}},
		}},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var buffer bytes.Buffer
			buffer.WriteString("MXSS\x01\x00")
			zw := zlib.NewWriter(&buffer)
			if err := rlp.Encode(zw, body); err != nil {
				t.Fatalf("failed to encode body: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("failed to compress body: %v", err)
			}
			if _, err := Decode(&buffer); !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestCodec_MissingOrderBookIsRejected(t *testing.T) {
	data := NewData()
	data.OrderBooks[common.Symbol{Base: 101, Quote: 100}] = nil
	if _, err := EncodeToBytes(data); err == nil {
		t.Errorf("encoding a nil order book should fail")
	}
}

func TestCodec_DecimalScaleIsPreserved(t *testing.T) {
	data := NewData()
	data.Accounts.Set(common.Address{}, 1, Account{Tradable: dec("10.00"), Frozen: dec("0")})
	got := roundTrip(t, data).Accounts.Get(common.Address{}, 1)
	if want, got := "10.00", got.Tradable.String(); want != got {
		t.Errorf("unexpected tradable text, wanted %s, got %s", want, got)
	}
}

func TestCodec_OrderArrivalIsPreserved(t *testing.T) {
	data := newTestData(t)
	got := roundTrip(t, data)
	book := got.OrderBooks[common.Symbol{Base: 101, Quote: 100}]
	orders := book.Orders()
	want := []common.OrderId{1, 2, 3}
	for i, id := range want {
		if orders[i].Id != id {
			t.Errorf("unexpected order at position %d, wanted %d, got %d", i, id, orders[i].Id)
		}
	}
}

func TestCodec_EncodingIsDeterministic(t *testing.T) {
	data := newTestData(t)
	first, err := EncodeToBytes(data)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := EncodeToBytes(roundTrip(t, data))
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		if !bytes.Equal(first, next) {
			t.Fatalf("encoding of equal data differs")
		}
	}
}

func TestCodec_HeaderIsVersioned(t *testing.T) {
	data, err := EncodeToBytes(NewData())
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if want, got := "MXSS\x01\x00", string(data[:6]); want != got {
		t.Errorf("unexpected header, wanted %q, got %q", want, got)
	}
	// zlib stream header for best compression
	if want, got := []byte{0x78, 0xda}, data[6:8]; !bytes.Equal(want, got) {
		t.Errorf("unexpected compression header, wanted %x, got %x", want, got)
	}
}

func TestCodec_CorruptInputIsDetected(t *testing.T) {
	valid, err := EncodeToBytes(newTestData(t))
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	flipped := bytes.Clone(valid)
	flipped[len(flipped)/2] ^= 0xff
	wrongVersion := bytes.Clone(valid)
	wrongVersion[4] = 2

	inputs := map[string][]byte{
		"empty":         {},
		"short header":  valid[:3],
		"wrong magic":   append([]byte("XXXX"), valid[4:]...),
		"wrong version": wrongVersion,
		"no body":       valid[:6],
		"truncated":     valid[:len(valid)-4],
		"flipped":       flipped,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(bytes.NewReader(input)); !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestCodec_ReadErrorsAreNotReportedAsCorruption(t *testing.T) {
	injected := errors.New("injected")
	if _, err := Decode(failingReader{injected}); !errors.Is(err, injected) || errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("expected injected error, got %v", err)
	}
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestData_EqualIsStructural(t *testing.T) {
	a := newTestData(t)
	b := newTestData(t)
	if !a.Equal(b) {
		t.Errorf("equal data should be equal")
	}
	b.Accounts.Set(common.Address{2}, 101, Account{Tradable: dec("-1.50"), Frozen: dec("0.25")})
	if !a.Equal(b) {
		t.Errorf("equal magnitudes should be equal")
	}
	b.Accounts.Set(common.Address{3}, 1, Account{})
	if a.Equal(b) {
		t.Errorf("additional account should make data differ")
	}
	c := newTestData(t)
	delete(c.OrderBooks, common.Symbol{Base: 102, Quote: 100})
	if a.Equal(c) {
		t.Errorf("missing order book should make data differ")
	}
}

func TestAccounts_GetReturnsZeroForUnknownEntries(t *testing.T) {
	accounts := Accounts{}
	if got := accounts.Get(common.Address{1}, 1); !got.Equal(Account{}) {
		t.Errorf("unexpected account %v", got)
	}
}
