package etherman

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/contracts/ERC20"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrEthermanChainID = errors.New("failed to get chain id")
	ErrEthermanDial    = errors.New("failed to connect to the ethereum client")
)

// Backend is everything the settlement flow needs from a JSON-RPC node.
// Both *ethclient.Client and the simulated client satisfy it.
type Backend interface {
	ethereum.ChainStateReader
	ethereum.TransactionReader

	bind.DeployBackend
	bind.ContractBackend

	ChainID(ctx context.Context) (*big.Int, error)
}

type Etherman struct {
	client  Backend
	chainID *big.Int

	tokens sync.Map // ethcommon.Address -> *ERC20.ERC20
}

func DialBackend(ctx context.Context, url string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewEtherman dials cfg.URL and checks the chain id against cfg.ExpectedChainID.
func NewEtherman(ctx context.Context, cfg *Config) (*Etherman, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, common.NewConfigurationError("RPC_URL")
	}

	client, err := DialBackend(ctx, cfg.URL)
	if err != nil {
		logger.WithField("url", cfg.URL).Errorf("failed to connect to the ethereum client: %v", err)
		return nil, errors.Join(ErrEthermanDial, err)
	}

	etherman, err := NewEthermanWithClient(ctx, client, cfg.ExpectedChainID)
	if err != nil {
		if c, ok := client.(interface{ Close() }); ok {
			c.Close()
		}
		return nil, err
	}
	return etherman, nil
}

func NewEthermanWithClient(ctx context.Context, client Backend, expectedChainID *big.Int) (*Etherman, error) {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		logger.Errorf("failed to get chain id: %v", err)
		return nil, errors.Join(ErrEthermanChainID, err)
	}

	if expectedChainID != nil && expectedChainID.Sign() != 0 && expectedChainID.Cmp(chainID) != 0 {
		logger.WithFields(logger.Fields{
			"expected": expectedChainID,
			"actual":   chainID,
		}).Error("connected to the wrong chain")
		return nil, &common.ChainMismatchError{Expected: common.BigIntClone(expectedChainID), Actual: chainID}
	}

	return &Etherman{
		client:  client,
		chainID: chainID,
	}, nil
}

func (etherman *Etherman) Client() Backend {
	return etherman.client
}

func (etherman *Etherman) ChainID() *big.Int {
	return common.BigIntClone(etherman.chainID)
}

func (etherman *Etherman) Close() {
	if c, ok := etherman.client.(interface{ Close() }); ok {
		c.Close()
	}
}

// GetBalance returns the native coin balance.
func (etherman *Etherman) GetBalance(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	return etherman.client.BalanceAt(ctx, addr, nil)
}

func (etherman *Etherman) BalanceOf(ctx context.Context, token, owner ethcommon.Address) (*big.Int, error) {
	contract, err := etherman.getTokenContract(token)
	if err != nil {
		return nil, err
	}
	return contract.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
}

func (etherman *Etherman) Allowance(ctx context.Context, token, owner, spender ethcommon.Address) (*big.Int, error) {
	contract, err := etherman.getTokenContract(token)
	if err != nil {
		return nil, err
	}
	return contract.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
}

func (etherman *Etherman) Approve(
	auth *bind.TransactOpts,
	token, spender ethcommon.Address,
	amount *big.Int,
) (*types.Transaction, error) {
	contract, err := etherman.getTokenContract(token)
	if err != nil {
		return nil, err
	}
	return contract.Approve(auth, spender, amount)
}

// Token returns a cached ERC20 binding.
func (etherman *Etherman) Token(token ethcommon.Address) (*ERC20.ERC20, error) {
	return etherman.getTokenContract(token)
}

func (etherman *Etherman) getTokenContract(token ethcommon.Address) (*ERC20.ERC20, error) {
	if cached, ok := etherman.tokens.Load(token); ok {
		return cached.(*ERC20.ERC20), nil
	}

	contract, err := ERC20.NewERC20(token, etherman.client)
	if err != nil {
		return nil, err
	}
	actual, _ := etherman.tokens.LoadOrStore(token, contract)
	return actual.(*ERC20.ERC20), nil
}
