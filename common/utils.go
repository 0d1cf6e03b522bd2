package common

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	txHashRegex  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	uuidRegex    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// The returned string has No 0x prefix
func ByteSliceToPureHexStr(b []byte) string {
	return Trim0xPrefix(ethcommon.Bytes2Hex(b))
}

func HexStrToByteSlice(hexStr string) []byte {
	return ethcommon.Hex2Bytes(Trim0xPrefix(hexStr))
}

// HexStrToBytes32 converts a hex string (with/without prefix 0x) to [32]byte
func HexStrToBytes32(hexStr string) [32]byte {
	var bytes32 [32]byte
	copy(bytes32[:], ethcommon.Hex2BytesFixed(Trim0xPrefix(hexStr), 32))
	return bytes32
}

// HexStrToBigInt converts a hex string (with/without prefix 0x) to *big.Int
func HexStrToBigInt(hexStr string) *big.Int {
	bigInt, ok := new(big.Int).SetString(Trim0xPrefix(hexStr), 16)
	if !ok {
		return nil
	}
	return bigInt
}

// BigIntToHexStr converts a big int to hex string with prefix 0x
func BigIntToHexStr(bigInt *big.Int) string {
	return Prepend0xPrefix(bigInt.Text(16))
}

// AddressToBytes32 left-pads an address to 32 bytes, the way CCTP encodes
// mint recipients and destination callers.
func AddressToBytes32(addr ethcommon.Address) [32]byte {
	var b [32]byte
	copy(b[:], ethcommon.LeftPadBytes(addr.Bytes(), 32))
	return b
}

// Bytes32ToAddress keeps the low 20 bytes.
func Bytes32ToAddress(b [32]byte) ethcommon.Address {
	return ethcommon.BytesToAddress(b[12:])
}

// Trim 0x or 0X prefix off the string.
func Trim0xPrefix(str string) string {
	s := strings.TrimPrefix(str, "0x")
	return strings.TrimPrefix(s, "0X")
}

func Prepend0xPrefix(str string) string {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		return str
	}
	return "0x" + str
}

// IsHexAddress is stricter than ethcommon.IsHexAddress: the 0x prefix is
// mandatory and the length must be exactly 40 hex characters.
func IsHexAddress(s string) bool {
	return addressRegex.MatchString(s)
}

// IsTxHash reports whether s is 0x followed by 64 hex characters.
func IsTxHash(s string) bool {
	return txHashRegex.MatchString(s)
}

// IsUUID only accepts the canonical 8-4-4-4-12 form.
func IsUUID(s string) bool {
	if !uuidRegex.MatchString(s) {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// RandBytes32 generates [32]byte with random values
func RandBytes32() [32]byte {
	var b [32]byte
	n, err := rand.Read(b[:])
	if err != nil || n != 32 {
		return [32]byte{}
	}
	return b
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil
	}
	return b
}

// Shorten shortens a hex string so that both sides have n characters and
// the rest is replaced with "..."
func Shorten(hexStr string, n int) string {
	str := Trim0xPrefix(hexStr)

	if len(str) <= n*2 {
		return Prepend0xPrefix(str)
	}
	return Prepend0xPrefix(str[:n] + "..." + str[len(str)-n:])
}

func BigIntClone(bigInt *big.Int) *big.Int {
	if bigInt == nil {
		return nil
	}
	return new(big.Int).Set(bigInt)
}
