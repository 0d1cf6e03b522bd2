package etherman

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

var (
	SimulatedChainID = big.NewInt(1337)
	blockGasLimit    = uint64(999999999999999999)
)

type SimulatedChain struct {
	Backend  *simulated.Backend
	Accounts []*bind.TransactOpts
}

func NewSimulatedChain() *SimulatedChain {
	// create accounts
	nAccount := 10
	accounts := make([]*bind.TransactOpts, nAccount)
	for i := 0; i < nAccount; i++ {
		accounts[i] = newAuth()
	}

	// allocate funds to accounts
	genesisAlloc := map[common.Address]types.Account{}
	for _, account := range accounts {
		balance, _ := new(big.Int).SetString("100000000000000000000", 10)
		genesisAlloc[account.From] = types.Account{
			Balance: balance,
		}
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(blockGasLimit))

	return &SimulatedChain{
		Backend:  backend,
		Accounts: accounts,
	}
}

// Etherman wraps the simulated client; expectedChainID is checked like on a
// real node.
func (sim *SimulatedChain) Etherman(expectedChainID *big.Int) (*Etherman, error) {
	return NewEthermanWithClient(context.Background(), sim.Backend.Client(), expectedChainID)
}

func (sim *SimulatedChain) Close() error {
	return sim.Backend.Close()
}

func newAuth() *bind.TransactOpts {
	sk, _ := crypto.GenerateKey()
	auth, _ := bind.NewKeyedTransactorWithChainID(sk, SimulatedChainID)
	return auth
}
