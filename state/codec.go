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
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/klauspost/compress/zlib"
	"github.com/shopspring/decimal"
)

const (
	// ErrCorruptSnapshot is reported when a snapshot can not be decompressed
	// or decoded.
	ErrCorruptSnapshot = common.ConstError("corrupt snapshot")

	snapshotMagic = "MXSS"
	// SnapshotVersion is the format version written by Encode.
	SnapshotVersion = uint16(1)
)

// The encoded form of the aggregate. Lists are sorted so that equal
// aggregates produce equal encodings.
type encodedData struct {
	OrderBooks []encodedBook
	Users      []encodedUser
}

type encodedBook struct {
	Base              uint32
	Quote             uint32
	BaseScale         uint32
	QuoteScale        uint32
	TakerFee          []byte
	MakerFee          []byte
	MinAmount         []byte
	MinVolume         []byte
	EnableMarketOrder bool
	Orders            []encodedOrder
}

type encodedOrder struct {
	Id     uint64
	Owner  common.Address
	Side   uint32
	Price  []byte
	Amount []byte
}

// A user is listed even if it holds no balance, so the set of users
// survives a round trip.
type encodedUser struct {
	Owner    common.Address
	Balances []encodedBalance
}

type encodedBalance struct {
	Currency uint32
	Tradable []byte
	Frozen   []byte
}

// Encode writes the snapshot of the given aggregate to the writer. The
// snapshot consists of a header naming the format version followed by the
// zlib stream, at best compression, of the encoded aggregate.
func Encode(w io.Writer, data *Data) error {
	body, err := encodeData(data)
	if err != nil {
		return err
	}
	header := make([]byte, len(snapshotMagic)+2)
	copy(header, snapshotMagic)
	binary.LittleEndian.PutUint16(header[len(snapshotMagic):], SnapshotVersion)
	if _, err := w.Write(header); err != nil {
		return err
	}
	zw, err := zlib.NewWriterLevel(w, zlib.BestCompression)
	if err != nil {
		return err
	}
	if err := rlp.Encode(zw, body); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Decode reads a snapshot written by Encode. Failures of the reader are
// returned as they are, malformed content is reported as ErrCorruptSnapshot.
func Decode(r io.Reader) (*Data, error) {
	header := make([]byte, len(snapshotMagic)+2)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated header", ErrCorruptSnapshot)
		}
		return nil, err
	}
	if string(header[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrCorruptSnapshot, header[:len(snapshotMagic)])
	}
	if version := binary.LittleEndian.Uint16(header[len(snapshotMagic):]); version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorruptSnapshot, version)
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	content, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	var body encodedData
	if err := rlp.DecodeBytes(content, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	res, err := decodeData(&body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return res, nil
}

// EncodeToBytes returns the snapshot of the given aggregate.
func EncodeToBytes(data *Data) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Encode(&buffer, data); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func encodeData(data *Data) (*encodedData, error) {
	res := &encodedData{}

	symbols := make([]common.Symbol, 0, len(data.OrderBooks))
	for symbol := range data.OrderBooks {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Compare(symbols[j]) < 0 })
	for _, symbol := range symbols {
		book, err := encodeBook(symbol, data.OrderBooks[symbol])
		if err != nil {
			return nil, err
		}
		res.OrderBooks = append(res.OrderBooks, book)
	}

	users := make([]common.Address, 0, len(data.Accounts))
	for user := range data.Accounts {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Compare(&users[j]) < 0 })
	for _, user := range users {
		balances := data.Accounts[user]
		currencies := make([]common.Currency, 0, len(balances))
		for currency := range balances {
			currencies = append(currencies, currency)
		}
		sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
		entry := encodedUser{Owner: user, Balances: []encodedBalance{}}
		for _, currency := range currencies {
			account := balances[currency]
			tradable, err := account.Tradable.MarshalBinary()
			if err != nil {
				return nil, err
			}
			frozen, err := account.Frozen.MarshalBinary()
			if err != nil {
				return nil, err
			}
			entry.Balances = append(entry.Balances, encodedBalance{
				Currency: uint32(currency),
				Tradable: tradable,
				Frozen:   frozen,
			})
		}
		res.Users = append(res.Users, entry)
	}
	return res, nil
}

func encodeBook(symbol common.Symbol, book *orderbook.OrderBook) (encodedBook, error) {
	if book == nil {
		return encodedBook{}, fmt.Errorf("missing order book for %v", symbol)
	}
	res := encodedBook{
		Base:              uint32(symbol.Base),
		Quote:             uint32(symbol.Quote),
		BaseScale:         book.BaseScale,
		QuoteScale:        book.QuoteScale,
		EnableMarketOrder: book.EnableMarketOrder,
	}
	fields := []struct {
		target *[]byte
		value  decimal.Decimal
	}{
		{&res.TakerFee, book.TakerFee},
		{&res.MakerFee, book.MakerFee},
		{&res.MinAmount, book.MinAmount},
		{&res.MinVolume, book.MinVolume},
	}
	for _, field := range fields {
		data, err := field.value.MarshalBinary()
		if err != nil {
			return encodedBook{}, err
		}
		*field.target = data
	}
	for _, order := range book.Orders() {
		price, err := order.Price.MarshalBinary()
		if err != nil {
			return encodedBook{}, err
		}
		amount, err := order.Amount.MarshalBinary()
		if err != nil {
			return encodedBook{}, err
		}
		res.Orders = append(res.Orders, encodedOrder{
			Id:     uint64(order.Id),
			Owner:  order.Owner,
			Side:   uint32(order.Side),
			Price:  price,
			Amount: amount,
		})
	}
	return res, nil
}

func decodeDecimal(data []byte) (decimal.Decimal, error) {
	var res decimal.Decimal
	if err := res.UnmarshalBinary(data); err != nil {
		return decimal.Decimal{}, err
	}
	return res, nil
}

func decodeData(body *encodedData) (*Data, error) {
	res := NewData()
	for _, enc := range body.OrderBooks {
		symbol := common.Symbol{Base: common.Currency(enc.Base), Quote: common.Currency(enc.Quote)}
		if _, found := res.OrderBooks[symbol]; found {
			return nil, fmt.Errorf("duplicate order book %v", symbol)
		}
		params := orderbook.Params{
			BaseScale:         enc.BaseScale,
			QuoteScale:        enc.QuoteScale,
			EnableMarketOrder: enc.EnableMarketOrder,
		}
		fields := []struct {
			target *decimal.Decimal
			data   []byte
		}{
			{&params.TakerFee, enc.TakerFee},
			{&params.MakerFee, enc.MakerFee},
			{&params.MinAmount, enc.MinAmount},
			{&params.MinVolume, enc.MinVolume},
		}
		for _, field := range fields {
			value, err := decodeDecimal(field.data)
			if err != nil {
				return nil, fmt.Errorf("invalid parameter of order book %v: %w", symbol, err)
			}
			*field.target = value
		}
		book := orderbook.New(params)
		for _, order := range enc.Orders {
			price, err := decodeDecimal(order.Price)
			if err != nil {
				return nil, fmt.Errorf("invalid price of order %d: %w", order.Id, err)
			}
			amount, err := decodeDecimal(order.Amount)
			if err != nil {
				return nil, fmt.Errorf("invalid amount of order %d: %w", order.Id, err)
			}
			err = book.Insert(orderbook.Order{
				Id:     common.OrderId(order.Id),
				Owner:  order.Owner,
				Side:   common.Side(order.Side),
				Price:  price,
				Amount: amount,
			})
			if err != nil {
				return nil, err
			}
		}
		res.OrderBooks[symbol] = book
	}
	for _, user := range body.Users {
		if _, found := res.Accounts[user.Owner]; found {
			return nil, fmt.Errorf("duplicate user %v", user.Owner)
		}
		balances := make(map[common.Currency]Account, len(user.Balances))
		for _, enc := range user.Balances {
			currency := common.Currency(enc.Currency)
			if _, found := balances[currency]; found {
				return nil, fmt.Errorf("duplicate balance of %v in currency %d", user.Owner, currency)
			}
			tradable, err := decodeDecimal(enc.Tradable)
			if err != nil {
				return nil, fmt.Errorf("invalid balance of %v: %w", user.Owner, err)
			}
			frozen, err := decodeDecimal(enc.Frozen)
			if err != nil {
				return nil, fmt.Errorf("invalid balance of %v: %w", user.Owner, err)
			}
			balances[currency] = Account{Tradable: tradable, Frozen: frozen}
		}
		res.Accounts[user.Owner] = balances
	}
	return res, nil
}
