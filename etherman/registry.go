package etherman

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	logger "github.com/sirupsen/logrus"
)

// ErrUnrecognizedChain mirrors EIP-3085's 4902: the chain has to be added
// before it can be selected.
var (
	ErrUnrecognizedChain = errors.New("unrecognized chain id")
	ErrNoActiveChain     = errors.New("no active chain selected")
)

type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals uint8
}

type ChainDefinition struct {
	ChainID          *big.Int
	ChainName        string
	NativeCurrency   NativeCurrency
	RPCURL           string
	BlockExplorerURL string
}

func BaseSepoliaDefinition(rpcURL string) *ChainDefinition {
	if rpcURL == "" {
		rpcURL = common.BaseSepoliaRPC
	}
	return &ChainDefinition{
		ChainID:          common.BigIntClone(common.BaseSepoliaChainID),
		ChainName:        "Base Sepolia",
		NativeCurrency:   NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		RPCURL:           rpcURL,
		BlockExplorerURL: "https://sepolia.basescan.org",
	}
}

type Dialer func(ctx context.Context, url string) (Backend, error)

// ChainRegistry is the server side counterpart of a wallet's network
// selector: known chains can be switched to, unknown ones must be added.
type ChainRegistry struct {
	mu     sync.RWMutex
	dial   Dialer
	chains map[string]*Etherman
	active *Etherman
}

func NewChainRegistry(dial Dialer) *ChainRegistry {
	if dial == nil {
		dial = DialBackend
	}
	return &ChainRegistry{
		dial:   dial,
		chains: make(map[string]*Etherman),
	}
}

// Register adds an already connected chain without switching to it.
func (r *ChainRegistry) Register(etherman *Etherman) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[etherman.chainID.String()] = etherman
}

func (r *ChainRegistry) SwitchChain(ctx context.Context, chainID *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	etherman, ok := r.chains[chainID.String()]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnrecognizedChain, chainID)
	}
	r.active = etherman
	return nil
}

// AddChain connects to def.RPCURL and registers the chain once its id is
// confirmed.
func (r *ChainRegistry) AddChain(ctx context.Context, def *ChainDefinition) error {
	if def == nil || def.ChainID == nil {
		return common.NewValidationError("chain definition needs a chain id")
	}
	if def.RPCURL == "" {
		return common.NewConfigurationError(fmt.Sprintf("rpc url of %s", def.ChainName))
	}

	client, err := r.dial(ctx, def.RPCURL)
	if err != nil {
		return errors.Join(ErrEthermanDial, err)
	}
	etherman, err := NewEthermanWithClient(ctx, client, def.ChainID)
	if err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"chain_id": def.ChainID,
		"name":     def.ChainName,
	}).Info("chain added")

	r.Register(etherman)
	return nil
}

func (r *ChainRegistry) Active() (*Etherman, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return nil, ErrNoActiveChain
	}
	return r.active, nil
}

func (r *ChainRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, etherman := range r.chains {
		etherman.Close()
	}
	r.chains = make(map[string]*Etherman)
	r.active = nil
}
