package burner

import (
	"context"
	"math/big"

	"github.com/TEENet-io/escrow-go/contracts/TokenMessengerV2"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type TokenContract interface {
	BalanceOf(opts *bind.CallOpts, account ethcommon.Address) (*big.Int, error)
	Allowance(opts *bind.CallOpts, owner, spender ethcommon.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender ethcommon.Address, value *big.Int) (*types.Transaction, error)
}

type Messenger interface {
	DepositForBurn(
		opts *bind.TransactOpts,
		amount *big.Int,
		destinationDomain uint32,
		mintRecipient [32]byte,
		burnToken ethcommon.Address,
		destinationCaller [32]byte,
		maxFee *big.Int,
		minFinalityThreshold uint32,
	) (*types.Transaction, error)
}

// Chain is the connected network the wallet currently points at.
type Chain interface {
	ChainID() *big.Int
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Token(addr ethcommon.Address) (TokenContract, error)
	TokenMessenger(addr ethcommon.Address) (Messenger, error)
}

// Wallet selects the network a burn is sent on.
type Wallet interface {
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, def *etherman.ChainDefinition) error
	ActiveChain() (Chain, error)
}

// RegistryWallet adapts an etherman.ChainRegistry to Wallet.
type RegistryWallet struct {
	*etherman.ChainRegistry
}

func NewRegistryWallet(registry *etherman.ChainRegistry) *RegistryWallet {
	return &RegistryWallet{ChainRegistry: registry}
}

func (w *RegistryWallet) ActiveChain() (Chain, error) {
	active, err := w.Active()
	if err != nil {
		return nil, err
	}
	return &ethChain{Etherman: active}, nil
}

type ethChain struct {
	*etherman.Etherman
}

func (c *ethChain) Token(addr ethcommon.Address) (TokenContract, error) {
	token, err := c.Etherman.Token(addr)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (c *ethChain) TokenMessenger(addr ethcommon.Address) (Messenger, error) {
	messenger, err := TokenMessengerV2.NewTokenMessengerV2(addr, c.Client())
	if err != nil {
		return nil, err
	}
	return messenger, nil
}
