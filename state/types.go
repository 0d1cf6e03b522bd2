package state

import (
	"database/sql"
	"math/big"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// EscrowRecord is what the service remembers about one appointment escrow.
type EscrowRecord struct {
	ContractAddress ethcommon.Address
	ConsultID       string
	DeployTxHash    ethcommon.Hash
	Depositor       ethcommon.Address
	Beneficiary     ethcommon.Address
	Amount          *big.Int
	Stage           escrowman.Stage
	BurnTxHash      ethcommon.Hash
	MintTx          string
	UpdatedAt       time.Time
}

type JSONEscrowRecord struct {
	ContractAddress string `json:"contractAddress"`
	ConsultID       string `json:"consultId,omitempty"`
	DeployTxHash    string `json:"deployTxHash"`
	Depositor       string `json:"depositor"`
	Beneficiary     string `json:"beneficiary"`
	Amount          string `json:"amount"`
	Stage           string `json:"stage"`
	BurnTxHash      string `json:"burnTxHash,omitempty"`
	MintTx          string `json:"mintTx,omitempty"`
}

func (r *EscrowRecord) ToJSON() *JSONEscrowRecord {
	j := &JSONEscrowRecord{
		ContractAddress: r.ContractAddress.Hex(),
		ConsultID:       r.ConsultID,
		DeployTxHash:    r.DeployTxHash.Hex(),
		Depositor:       r.Depositor.Hex(),
		Beneficiary:     r.Beneficiary.Hex(),
		Amount:          r.Amount.String(),
		Stage:           r.Stage.String(),
		MintTx:          r.MintTx,
	}
	if r.BurnTxHash != (ethcommon.Hash{}) {
		j.BurnTxHash = r.BurnTxHash.Hex()
	}
	return j
}

type sqlEscrowRecord struct {
	ContractAddress string
	ConsultID       sql.NullString
	DeployTxHash    string
	Depositor       string
	Beneficiary     string
	Amount          int64
	Stage           string
	BurnTxHash      string
	MintTx          string
	UpdatedAt       int64
}

func (s *sqlEscrowRecord) encode(r *EscrowRecord) *sqlEscrowRecord {
	s.ContractAddress = addrToStr(r.ContractAddress)
	s.ConsultID = sql.NullString{String: r.ConsultID, Valid: r.ConsultID != ""}
	s.DeployTxHash = r.DeployTxHash.String()[2:]
	s.Depositor = addrToStr(r.Depositor)
	s.Beneficiary = addrToStr(r.Beneficiary)
	s.Amount = r.Amount.Int64()
	s.Stage = r.Stage.String()
	s.BurnTxHash = hashToStr(r.BurnTxHash)
	s.MintTx = r.MintTx
	s.UpdatedAt = r.UpdatedAt.Unix()
	return s
}

func (s *sqlEscrowRecord) decode() *EscrowRecord {
	return &EscrowRecord{
		ContractAddress: ethcommon.HexToAddress(s.ContractAddress),
		ConsultID:       s.ConsultID.String,
		DeployTxHash:    common.HexStrToBytes32(s.DeployTxHash),
		Depositor:       ethcommon.HexToAddress(s.Depositor),
		Beneficiary:     ethcommon.HexToAddress(s.Beneficiary),
		Amount:          big.NewInt(s.Amount),
		Stage:           escrowman.ParseStage(s.Stage),
		BurnTxHash:      strToHash(s.BurnTxHash),
		MintTx:          s.MintTx,
		UpdatedAt:       time.Unix(s.UpdatedAt, 0),
	}
}

func (s *sqlEscrowRecord) fields() []interface{} {
	return []interface{}{
		&s.ContractAddress,
		&s.ConsultID,
		&s.DeployTxHash,
		&s.Depositor,
		&s.Beneficiary,
		&s.Amount,
		&s.Stage,
		&s.BurnTxHash,
		&s.MintTx,
		&s.UpdatedAt,
	}
}

func addrToStr(a ethcommon.Address) string {
	return common.ByteSliceToPureHexStr(a.Bytes())
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
