package settlement

import (
	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/burner"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/ethtxmanager"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Step string

const (
	StepDeploy   Step = "DEPLOY"
	StepBurn     Step = "BURN"
	StepAttest   Step = "ATTEST"
	StepFinalize Step = "FINALIZE"
	StepRefresh  Step = "REFRESH"
)

type SettleRequest struct {
	ConsultID   string
	Depositor   ethcommon.Address
	Beneficiary ethcommon.Address
	AmountUSDC  decimal.Decimal

	// Resume points. A set Contract skips the deploy, a set BurnTxHash
	// skips the burn.
	Contract   *ethcommon.Address
	BurnTxHash *ethcommon.Hash
}

type FinalizeRequest struct {
	BurnTxHash            ethcommon.Hash
	ExpectedMintRecipient *ethcommon.Address
}

type FinalizeOutcome struct {
	Attested *attestation.AttestedMessage
	Result   *ethtxmanager.FinalizeResult
}

// Progress is how far one Settle call got. On failure FailedStep names the
// step that returned the error and everything before it is filled in.
type Progress struct {
	ConsultID string
	Contract  ethcommon.Address

	Deployment *escrowman.Deployment
	Burn       *burner.BurnRequest
	Attested   *attestation.AttestedMessage
	Finalized  *ethtxmanager.FinalizeResult
	Status     *escrowman.Status

	Completed  []Step
	FailedStep Step
}

func (p *Progress) done(step Step) {
	p.Completed = append(p.Completed, step)
}

// Stage is the last stage read from the contract, StageUnknown before the
// first read.
func (p *Progress) Stage() escrowman.Stage {
	if p.Status == nil {
		return escrowman.StageUnknown
	}
	return p.Status.Stage
}

func (p *Progress) MintTx() string {
	if p.Finalized == nil {
		return ""
	}
	return p.Finalized.MintTx()
}
