package escrowman

import (
	"context"
	"math/big"

	"github.com/TEENet-io/escrow-go/contracts/Escrow"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EscrowContract is the subset of the generated binding the gateway uses.
type EscrowContract interface {
	Stage(opts *bind.CallOpts) (uint8, error)
	Depositor(opts *bind.CallOpts) (ethcommon.Address, error)
	Beneficiary(opts *bind.CallOpts) (ethcommon.Address, error)
	Amount(opts *bind.CallOpts) (*big.Int, error)
	DepositorReleaseOk(opts *bind.CallOpts) (bool, error)
	BeneficiaryReleaseOk(opts *bind.CallOpts) (bool, error)
	DepositorRefundOk(opts *bind.CallOpts) (bool, error)
	BeneficiaryRefundOk(opts *bind.CallOpts) (bool, error)

	Deposit(opts *bind.TransactOpts) (*types.Transaction, error)
	ApproveRelease(opts *bind.TransactOpts) (*types.Transaction, error)
	ApproveRefund(opts *bind.TransactOpts) (*types.Transaction, error)
}

// TokenContract is the ERC20 surface of the settlement token.
type TokenContract interface {
	BalanceOf(opts *bind.CallOpts, account ethcommon.Address) (*big.Int, error)
	Allowance(opts *bind.CallOpts, owner, spender ethcommon.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender ethcommon.Address, value *big.Int) (*types.Transaction, error)
}

// Chain is satisfied by *etherman.Etherman.
type Chain interface {
	ChainID() *big.Int
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	WaitDeployed(ctx context.Context, tx *types.Transaction) (ethcommon.Address, error)
}

type DeployFunc func(
	auth *bind.TransactOpts,
	bytecode []byte,
	depositor, beneficiary ethcommon.Address,
	amount *big.Int,
) (ethcommon.Address, *types.Transaction, error)

type EscrowFactory func(addr ethcommon.Address) (EscrowContract, error)

// BackendBindings binds the real contracts to a JSON-RPC backend.
func BackendBindings(backend bind.ContractBackend) (DeployFunc, EscrowFactory) {
	deploy := func(
		auth *bind.TransactOpts,
		bytecode []byte,
		depositor, beneficiary ethcommon.Address,
		amount *big.Int,
	) (ethcommon.Address, *types.Transaction, error) {
		addr, tx, _, err := Escrow.DeployEscrow(auth, backend, bytecode, depositor, beneficiary, amount)
		return addr, tx, err
	}
	factory := func(addr ethcommon.Address) (EscrowContract, error) {
		return Escrow.NewEscrow(addr, backend)
	}
	return deploy, factory
}
