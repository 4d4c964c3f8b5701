package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const accountAddressLength = 32

// ParseAccountAddress normalizes an account address to the indexer's form:
// lower-case, 0x-prefixed and left-padded to 32 bytes. Short forms such as
// "0x1" are accepted.
func ParseAccountAddress(input string) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(input))
	raw = strings.TrimPrefix(raw, "0x")
	if raw == "" {
		return "", fmt.Errorf("invalid address: %q", input)
	}
	if len(raw) > accountAddressLength*2 {
		return "", fmt.Errorf("invalid address length: %s", input)
	}
	if len(raw)%2 == 1 {
		raw = "0" + raw
	}

	data, err := hexutil.Decode("0x" + raw)
	if err != nil {
		return "", fmt.Errorf("invalid address: %s", input)
	}
	return hexutil.Encode(common.LeftPadBytes(data, accountAddressLength)), nil
}

// ParseAccountAddresses normalizes a list, skipping blanks.
func ParseAccountAddresses(inputs []string) ([]string, error) {
	addresses := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		address, err := ParseAccountAddress(input)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}
