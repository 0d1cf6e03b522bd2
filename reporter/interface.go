package reporter

import (
	"context"

	"github.com/TEENet-io/escrow-go/circle"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/onramp"
	"github.com/TEENet-io/escrow-go/settlement"
	"github.com/TEENet-io/escrow-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Settlement is satisfied by *settlement.Orchestrator.
type Settlement interface {
	Deploy(ctx context.Context, consultID string, depositor, beneficiary ethcommon.Address, amountUSDC decimal.Decimal) (*escrowman.Deployment, error)
	RefreshStatus(ctx context.Context, contract ethcommon.Address) (*escrowman.Status, error)
	Finalize(ctx context.Context, req settlement.FinalizeRequest) (*settlement.FinalizeOutcome, error)
	Record(consultID string) (*state.EscrowRecord, error)
	Records(stage escrowman.Stage) ([]*state.EscrowRecord, error)
}

// DepositFunder is satisfied by *circle.EscrowFunder.
type DepositFunder interface {
	ApproveDeposit(ctx context.Context, contractID, depositorWalletID string, amountUSDC decimal.Decimal) (*circle.ContractExecution, error)
	Deposit(ctx context.Context, contractID, depositorWalletID string) (*circle.ContractExecution, error)
}

// TransactionReader is satisfied by *circle.Client.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (*circle.Transaction, error)
}

// OnrampLinker is satisfied by *onramp.Client.
type OnrampLinker interface {
	URL(ctx context.Context, req onramp.Request) (string, error)
}
