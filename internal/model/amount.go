package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Amount is a non-negative integer of arbitrary precision.
// The indexer emits amounts as JSON numbers or decimal strings; both decode.
type Amount struct {
	value *big.Int
}

// AmountFromUint64 builds an Amount from a uint64.
func AmountFromUint64(v uint64) Amount {
	return Amount{value: new(big.Int).SetUint64(v)}
}

// ParseAmount parses a base-10 unsigned integer.
func ParseAmount(input string) (Amount, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	value, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %s", input)
	}
	if value.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount: %s", input)
	}
	return Amount{value: value}, nil
}

// Cmp compares a and b like big.Int.Cmp.
func (a Amount) Cmp(b Amount) int {
	return a.big().Cmp(b.big())
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{value: new(big.Int).Add(a.big(), b.big())}
}

// IsZero reports whether the amount is zero. The zero Amount is zero.
func (a Amount) IsZero() bool {
	return a.big().Sign() == 0
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.big().String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or an integer JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		text = unquoted
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

var zero = new(big.Int)

func (a Amount) big() *big.Int {
	if a.value == nil {
		return zero
	}
	return a.value
}

// Version is a ledger version. The indexer encodes bigint columns as either
// JSON numbers or strings depending on the endpoint.
type Version uint64

// UnmarshalJSON accepts a JSON number or a decimal string.
func (v *Version) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*v = 0
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		text = unquoted
	}
	parsed, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version: %s", text)
	}
	*v = Version(parsed)
	return nil
}
