package settlement

import (
	"context"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/burner"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/ethtxmanager"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EscrowGateway is satisfied by *escrowman.EscrowMan.
type EscrowGateway interface {
	Deploy(ctx context.Context, depositor, beneficiary ethcommon.Address, amountUSDC decimal.Decimal) (*escrowman.Deployment, error)
	GetStatus(ctx context.Context, contract ethcommon.Address) (*escrowman.Status, error)
	Deposit(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (*escrowman.DepositResult, error)
	ApproveRelease(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error)
	ApproveRefund(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error)
}

// BurnInitiator is satisfied by *burner.Burner.
type BurnInitiator interface {
	Burn(ctx context.Context, escrow ethcommon.Address, amountUSDC decimal.Decimal) (*burner.BurnRequest, error)
}

// AttestationPoller is satisfied by *attestation.Poller.
type AttestationPoller interface {
	Poll(ctx context.Context, req attestation.Request) (*attestation.AttestedMessage, error)
}

// Finalizer is satisfied by *ethtxmanager.EthTxManager.
type Finalizer interface {
	FinalizeBurn(ctx context.Context, burnTxHash ethcommon.Hash, message, att []byte) (*ethtxmanager.FinalizeResult, error)
}
