package common

import (
	"encoding/json"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// WalletAddress is what wallet providers hand us at the process boundary.
// Some return a bare hex string, others an object carrying evmAddress; both
// decode into the same lower-cased address.
type WalletAddress struct {
	raw string
}

type walletAddressObject struct {
	EvmAddress string `json:"evmAddress"`
	Address    string `json:"address"`
}

func NewWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if !IsHexAddress(s) {
		return WalletAddress{}, NewValidationError("invalid Ethereum address format: %q", s)
	}
	return WalletAddress{raw: strings.ToLower(s)}, nil
}

// NormalizeAddress accepts a string, a WalletAddress or a map holding an
// evmAddress/address entry.
func NormalizeAddress(v interface{}) (WalletAddress, error) {
	switch t := v.(type) {
	case WalletAddress:
		if t.IsZero() {
			return WalletAddress{}, NewValidationError("empty address")
		}
		return t, nil
	case string:
		return NewWalletAddress(t)
	case ethcommon.Address:
		return NewWalletAddress(t.Hex())
	case map[string]interface{}:
		for _, key := range []string{"evmAddress", "address"} {
			if s, ok := t[key].(string); ok {
				return NewWalletAddress(s)
			}
		}
		return WalletAddress{}, NewValidationError("object carries no evmAddress")
	case nil:
		return WalletAddress{}, NewValidationError("missing address")
	default:
		return WalletAddress{}, NewValidationError("unsupported address type %T", v)
	}
}

func (w *WalletAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		addr, err := NewWalletAddress(s)
		if err != nil {
			return err
		}
		*w = addr
		return nil
	}

	var obj walletAddressObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return NewValidationError("address must be a string or an object with evmAddress")
	}
	s = obj.EvmAddress
	if s == "" {
		s = obj.Address
	}
	addr, err := NewWalletAddress(s)
	if err != nil {
		return err
	}
	*w = addr
	return nil
}

func (w WalletAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.raw)
}

func (w WalletAddress) IsZero() bool { return w.raw == "" }

func (w WalletAddress) String() string { return w.raw }

func (w WalletAddress) Address() ethcommon.Address {
	return ethcommon.HexToAddress(w.raw)
}
