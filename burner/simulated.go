package burner

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SimulatedBurn is what a TokenMessengerV2 would emit for a burn.
type SimulatedBurn struct {
	TxHash            ethcommon.Hash
	Sender            ethcommon.Address
	Amount            *big.Int
	DestinationDomain uint32
	MintRecipient     [32]byte
	BurnToken         ethcommon.Address
	MaxFee            *big.Int
	MinFinality       uint32
}

// SimulatedChain is a source chain built on the in-memory network of
// escrowman, plus a token messenger.
type SimulatedChain struct {
	*escrowman.SimulatedNetwork
	Messenger *SimulatedMessenger
}

func NewSimulatedChain(chainID *big.Int, messenger ethcommon.Address) *SimulatedChain {
	net := escrowman.NewSimulatedNetwork(chainID)
	return &SimulatedChain{
		SimulatedNetwork: net,
		Messenger:        &SimulatedMessenger{net: net, addr: messenger},
	}
}

func (c *SimulatedChain) Token(addr ethcommon.Address) (TokenContract, error) {
	return c.SimulatedNetwork.Token, nil
}

func (c *SimulatedChain) TokenMessenger(addr ethcommon.Address) (Messenger, error) {
	if addr != c.Messenger.addr {
		return nil, bind.ErrNoCode
	}
	return c.Messenger, nil
}

type SimulatedMessenger struct {
	net  *escrowman.SimulatedNetwork
	addr ethcommon.Address

	mu    sync.Mutex
	burns []SimulatedBurn
}

func (m *SimulatedMessenger) DepositForBurn(
	opts *bind.TransactOpts,
	amount *big.Int,
	destinationDomain uint32,
	mintRecipient [32]byte,
	burnToken ethcommon.Address,
	destinationCaller [32]byte,
	maxFee *big.Int,
	minFinalityThreshold uint32,
) (*types.Transaction, error) {
	if mintRecipient == ([32]byte{}) {
		return nil, errors.New("execution reverted: Mint recipient must be nonzero")
	}
	if err := m.net.Token.BurnFrom(m.addr, opts.From, amount); err != nil {
		return nil, errors.New("execution reverted: " + err.Error())
	}

	tx := m.net.NewTx()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.burns = append(m.burns, SimulatedBurn{
		TxHash:            tx.Hash(),
		Sender:            opts.From,
		Amount:            new(big.Int).Set(amount),
		DestinationDomain: destinationDomain,
		MintRecipient:     mintRecipient,
		BurnToken:         burnToken,
		MaxFee:            new(big.Int).Set(maxFee),
		MinFinality:       minFinalityThreshold,
	})
	return tx, nil
}

func (m *SimulatedMessenger) Burns() []SimulatedBurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SimulatedBurn(nil), m.burns...)
}

// SimulatedWallet knows a fixed set of reachable chains but only recognizes
// those added to it, like a browser wallet.
type SimulatedWallet struct {
	mu        sync.Mutex
	reachable map[string]Chain
	known     map[string]Chain
	active    Chain

	SwitchCalls int
	AddCalls    int
}

func NewSimulatedWallet(reachable ...Chain) *SimulatedWallet {
	w := &SimulatedWallet{
		reachable: make(map[string]Chain),
		known:     make(map[string]Chain),
	}
	for _, chain := range reachable {
		w.reachable[chain.ChainID().String()] = chain
	}
	return w
}

// Know registers chain as already added; the first one becomes active.
func (w *SimulatedWallet) Know(chain Chain) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known[chain.ChainID().String()] = chain
	w.reachable[chain.ChainID().String()] = chain
	if w.active == nil {
		w.active = chain
	}
}

func (w *SimulatedWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.SwitchCalls++
	chain, ok := w.known[chainID.String()]
	if !ok {
		return etherman.ErrUnrecognizedChain
	}
	w.active = chain
	return nil
}

func (w *SimulatedWallet) AddChain(ctx context.Context, def *etherman.ChainDefinition) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.AddCalls++
	chain, ok := w.reachable[def.ChainID.String()]
	if !ok {
		return errors.Join(etherman.ErrEthermanDial, errors.New("unreachable rpc "+def.RPCURL))
	}
	if chain.ChainID().Cmp(def.ChainID) != 0 {
		return &common.ChainMismatchError{Expected: def.ChainID, Actual: chain.ChainID()}
	}
	w.known[def.ChainID.String()] = chain
	return nil
}

func (w *SimulatedWallet) ActiveChain() (Chain, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil, etherman.ErrNoActiveChain
	}
	return w.active, nil
}
