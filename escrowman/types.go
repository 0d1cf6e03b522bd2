package escrowman

import (
	"encoding/json"
	"math/big"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Stage mirrors the escrow contract's on-chain enum. Anything the contract
// reports outside 0..3 becomes StageUnknown.
type Stage int

const (
	StageOpen Stage = iota
	StageFunded
	StageReleased
	StageRefunded
	StageUnknown
)

func StageFromUint8(v uint8) Stage {
	if v > uint8(StageRefunded) {
		return StageUnknown
	}
	return Stage(v)
}

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "OPEN"
	case StageFunded:
		return "FUNDED"
	case StageReleased:
		return "RELEASED"
	case StageRefunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

func ParseStage(s string) Stage {
	for st := StageOpen; st < StageUnknown; st++ {
		if st.String() == s {
			return st
		}
	}
	return StageUnknown
}

// IsTerminal reports whether no further transition is possible.
func (s Stage) IsTerminal() bool {
	return s == StageReleased || s == StageRefunded
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Approvals is the set of the four approval flags.
type Approvals uint8

const (
	DepositorRelease Approvals = 1 << iota
	BeneficiaryRelease
	DepositorRefund
	BeneficiaryRefund
)

func (a Approvals) Has(flag Approvals) bool { return a&flag == flag }

func (a Approvals) ReleaseAgreed() bool { return a.Has(DepositorRelease | BeneficiaryRelease) }

func (a Approvals) RefundAgreed() bool { return a.Has(DepositorRefund | BeneficiaryRefund) }

func (a Approvals) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]bool{
		"depositorReleaseOk":   a.Has(DepositorRelease),
		"beneficiaryReleaseOk": a.Has(BeneficiaryRelease),
		"depositorRefundOk":    a.Has(DepositorRefund),
		"beneficiaryRefundOk":  a.Has(BeneficiaryRefund),
	})
}

// Status is one consistent read of an escrow. It is stale as soon as it is
// returned.
type Status struct {
	Contract    ethcommon.Address
	Stage       Stage
	RawStage    uint8
	Depositor   ethcommon.Address
	Beneficiary ethcommon.Address
	Amount      *big.Int
	Balance     *big.Int
	Approvals   Approvals
}

// IsParty reports whether addr is the depositor or the beneficiary.
func (s *Status) IsParty(addr ethcommon.Address) bool {
	return addr == s.Depositor || addr == s.Beneficiary
}

func (s *Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Contract    string    `json:"contractAddress"`
		Stage       Stage     `json:"stage"`
		RawStage    uint8     `json:"rawStage"`
		Depositor   string    `json:"depositor"`
		Beneficiary string    `json:"beneficiary"`
		Amount      string    `json:"amount"`
		AmountUSDC  string    `json:"amountUSDC"`
		Balance     string    `json:"balance"`
		Approvals   Approvals `json:"approvals"`
	}{
		Contract:    s.Contract.Hex(),
		Stage:       s.Stage,
		RawStage:    s.RawStage,
		Depositor:   s.Depositor.Hex(),
		Beneficiary: s.Beneficiary.Hex(),
		Amount:      bigString(s.Amount),
		AmountUSDC:  common.FromUSDCUnits(s.Amount).String(),
		Balance:     bigString(s.Balance),
		Approvals:   s.Approvals,
	})
}

type Deployment struct {
	ContractAddress ethcommon.Address
	DeployTxHash    ethcommon.Hash
	Depositor       ethcommon.Address
	Beneficiary     ethcommon.Address
	Amount          *big.Int
}

type DepositResult struct {
	// zero when the existing allowance already covered the amount
	ApproveTxHash ethcommon.Hash
	DepositTxHash ethcommon.Hash
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
