package ethtxmanager

import (
	"encoding/json"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// AlreadyProcessed stands in for the mint tx hash when the destination
// chain had already consumed the message.
const AlreadyProcessed = "already-processed"

type FinalizationStatus string

const (
	Pending               FinalizationStatus = "pending"
	Minted                FinalizationStatus = "minted"
	AlreadyProcessedState FinalizationStatus = "already_processed"
	Reverted              FinalizationStatus = "reverted"
)

func (s FinalizationStatus) Done() bool {
	return s == Minted || s == AlreadyProcessedState
}

type FinalizeResult struct {
	MintTxHash       ethcommon.Hash
	AlreadyProcessed bool
}

// MintTx is the value reported to callers: the mint tx hash or
// "already-processed".
func (r *FinalizeResult) MintTx() string {
	if r.AlreadyProcessed {
		return AlreadyProcessed
	}
	return r.MintTxHash.Hex()
}

func (r *FinalizeResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"mintTx": r.MintTx()})
}

// Finalization is the persisted record of one receiveMessage submission.
type Finalization struct {
	MessageHash  ethcommon.Hash
	Nonce        [32]byte
	SourceDomain uint32
	BurnTxHash   ethcommon.Hash
	MintTxHash   ethcommon.Hash
	Status       FinalizationStatus
	Reason       string
	UpdatedAt    time.Time
}

func (f *Finalization) Result() *FinalizeResult {
	if f.Status == AlreadyProcessedState || f.MintTxHash == (ethcommon.Hash{}) {
		return &FinalizeResult{AlreadyProcessed: true}
	}
	return &FinalizeResult{MintTxHash: f.MintTxHash}
}

type sqlFinalization struct {
	MessageHash  string
	Nonce        string
	SourceDomain uint32
	BurnTxHash   string
	MintTxHash   string
	Status       string
	Reason       string
	UpdatedAt    int64
}

func hashToStr(h ethcommon.Hash) string {
	if h == (ethcommon.Hash{}) {
		return ""
	}
	return h.String()[2:]
}

func strToHash(s string) ethcommon.Hash {
	if s == "" {
		return ethcommon.Hash{}
	}
	return common.HexStrToBytes32(s)
}

func (s *sqlFinalization) encode(f *Finalization) *sqlFinalization {
	s.MessageHash = f.MessageHash.String()[2:]
	s.Nonce = common.ByteSliceToPureHexStr(f.Nonce[:])
	s.SourceDomain = f.SourceDomain
	s.BurnTxHash = hashToStr(f.BurnTxHash)
	s.MintTxHash = hashToStr(f.MintTxHash)
	s.Status = string(f.Status)
	s.Reason = f.Reason
	s.UpdatedAt = f.UpdatedAt.Unix()
	return s
}

func (s *sqlFinalization) decode() *Finalization {
	return &Finalization{
		MessageHash:  common.HexStrToBytes32(s.MessageHash),
		Nonce:        common.HexStrToBytes32(s.Nonce),
		SourceDomain: s.SourceDomain,
		BurnTxHash:   strToHash(s.BurnTxHash),
		MintTxHash:   strToHash(s.MintTxHash),
		Status:       FinalizationStatus(s.Status),
		Reason:       s.Reason,
		UpdatedAt:    time.Unix(s.UpdatedAt, 0),
	}
}
