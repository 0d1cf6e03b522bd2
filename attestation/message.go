package attestation

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// CCTP v2 message layout:
//
//	version                    uint32   0
//	sourceDomain               uint32   4
//	destinationDomain          uint32   8
//	nonce                      bytes32  12
//	sender                     bytes32  44
//	recipient                  bytes32  76
//	destinationCaller          bytes32  108
//	minFinalityThreshold       uint32   140
//	finalityThresholdExecuted  uint32   144
//	messageBody                bytes    148
const (
	headerLen = 148

	// burn message body: version, burnToken, mintRecipient, amount,
	// messageSender, maxFee, feeExecuted, expirationBlock, hookData
	burnBodyLen = 4 + 7*32
)

var (
	ErrMessageTooShort = errors.New("cctp message too short")
	ErrBodyTooShort    = errors.New("cctp burn message body too short")
)

type MessageHeader struct {
	Version                   uint32
	SourceDomain              uint32
	DestinationDomain         uint32
	Nonce                     [32]byte
	Sender                    [32]byte
	Recipient                 [32]byte
	DestinationCaller         [32]byte
	MinFinalityThreshold      uint32
	FinalityThresholdExecuted uint32
	Body                      []byte
}

func ParseMessageHeader(msg []byte) (*MessageHeader, error) {
	if len(msg) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooShort, len(msg))
	}
	h := &MessageHeader{
		Version:                   binary.BigEndian.Uint32(msg[0:4]),
		SourceDomain:              binary.BigEndian.Uint32(msg[4:8]),
		DestinationDomain:         binary.BigEndian.Uint32(msg[8:12]),
		MinFinalityThreshold:      binary.BigEndian.Uint32(msg[140:144]),
		FinalityThresholdExecuted: binary.BigEndian.Uint32(msg[144:148]),
		Body:                      append([]byte(nil), msg[headerLen:]...),
	}
	copy(h.Nonce[:], msg[12:44])
	copy(h.Sender[:], msg[44:76])
	copy(h.Recipient[:], msg[76:108])
	copy(h.DestinationCaller[:], msg[108:140])
	return h, nil
}

func (h *MessageHeader) Encode() []byte {
	out := make([]byte, headerLen, headerLen+len(h.Body))
	binary.BigEndian.PutUint32(out[0:4], h.Version)
	binary.BigEndian.PutUint32(out[4:8], h.SourceDomain)
	binary.BigEndian.PutUint32(out[8:12], h.DestinationDomain)
	copy(out[12:44], h.Nonce[:])
	copy(out[44:76], h.Sender[:])
	copy(out[76:108], h.Recipient[:])
	copy(out[108:140], h.DestinationCaller[:])
	binary.BigEndian.PutUint32(out[140:144], h.MinFinalityThreshold)
	binary.BigEndian.PutUint32(out[144:148], h.FinalityThresholdExecuted)
	return append(out, h.Body...)
}

type BurnMessage struct {
	Header *MessageHeader

	Version         uint32
	BurnToken       ethcommon.Address
	MintRecipient   ethcommon.Address
	Amount          *big.Int
	MessageSender   ethcommon.Address
	MaxFee          *big.Int
	FeeExecuted     *big.Int
	ExpirationBlock *big.Int
	HookData        []byte
}

// ParseBurnMessage decodes a full message whose body is a TokenMessengerV2
// burn message.
func ParseBurnMessage(msg []byte) (*BurnMessage, error) {
	h, err := ParseMessageHeader(msg)
	if err != nil {
		return nil, err
	}
	b := h.Body
	if len(b) < burnBodyLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooShort, len(b))
	}

	word := func(i int) []byte { return b[4+32*i : 4+32*(i+1)] }
	return &BurnMessage{
		Header:          h,
		Version:         binary.BigEndian.Uint32(b[0:4]),
		BurnToken:       ethcommon.BytesToAddress(word(0)),
		MintRecipient:   ethcommon.BytesToAddress(word(1)),
		Amount:          new(big.Int).SetBytes(word(2)),
		MessageSender:   ethcommon.BytesToAddress(word(3)),
		MaxFee:          new(big.Int).SetBytes(word(4)),
		FeeExecuted:     new(big.Int).SetBytes(word(5)),
		ExpirationBlock: new(big.Int).SetBytes(word(6)),
		HookData:        append([]byte(nil), b[burnBodyLen:]...),
	}, nil
}

// Encode writes the body into Header.Body and returns the full message.
func (m *BurnMessage) Encode() []byte {
	body := make([]byte, burnBodyLen, burnBodyLen+len(m.HookData))
	binary.BigEndian.PutUint32(body[0:4], m.Version)
	put := func(i int, v []byte) { copy(body[4+32*(i+1)-len(v):4+32*(i+1)], v) }
	put(0, m.BurnToken.Bytes())
	put(1, m.MintRecipient.Bytes())
	put(2, bigBytes(m.Amount))
	put(3, m.MessageSender.Bytes())
	put(4, bigBytes(m.MaxFee))
	put(5, bigBytes(m.FeeExecuted))
	put(6, bigBytes(m.ExpirationBlock))
	body = append(body, m.HookData...)

	h := *m.Header
	h.Body = body
	return h.Encode()
}

func (m *BurnMessage) Decoded() DecodedMessageBody {
	return DecodedMessageBody{
		BurnToken:     m.BurnToken.Hex(),
		MintRecipient: m.MintRecipient.Hex(),
		Amount:        m.Amount.String(),
		MessageSender: m.MessageSender.Hex(),
		MaxFee:        m.MaxFee.String(),
		FeeExecuted:   m.FeeExecuted.String(),
	}
}

func bigBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(common.Trim0xPrefix(s))
}
