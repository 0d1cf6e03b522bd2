package ethtxmanager

import (
	"errors"
	"regexp"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrFinalizeInFlight         = errors.New("message is already being finalized")
	ErrDBOpGetFinalization      = errors.New("failed to get finalization")
	ErrDBOpInsertFinalization   = errors.New("failed to insert finalization")
	ErrDBOpUpdateFinalization   = errors.New("failed to update finalization")
	ErrTransmitterUsedNonces    = errors.New("failed to call transmitter.usedNonces")
	ErrInvalidAttestedMessage   = errors.New("invalid attested message")
	ErrDBOpGetPendingFinalizing = errors.New("failed to get pending finalizations")
)

// MessageTransmitterV2 reverts with "Nonce already used" on replay; the other
// phrasings come from earlier transmitter versions and relayers.
var alreadyProcessedRe = regexp.MustCompile(`(?i)already processed|message already processed|replay|nonce already used`)

func IsAlreadyProcessed(reason string) bool {
	return alreadyProcessedRe.MatchString(reason)
}

// EthTxManager submits attested CCTP messages to the destination chain's
// message transmitter with the relayer key.
type EthTxManager struct {
	cfg         *Config
	chain       Chain
	transmitter Transmitter
	relayer     *bind.TransactOpts
	mgrdb       *EthTxManagerDB
	metrics     *metrics.Registry

	// messageHash -> struct{}
	inFlight sync.Map
}

// New binds the transmitter on eth. relayer may be nil, in which case
// Finalize fails with a configuration error.
func New(cfg *Config, eth *etherman.Etherman, relayer *bind.TransactOpts, mgrdb *EthTxManagerDB) (*EthTxManager, error) {
	if eth == nil {
		return nil, common.NewConfigurationError("RPC_URL")
	}
	transmitter, err := NewTransmitter(cfg.Transmitter, eth.Client())
	if err != nil {
		logger.WithField("transmitter", cfg.Transmitter.Hex()).Errorf("failed to bind message transmitter: %v", err)
		return nil, err
	}
	return NewWithTransmitter(cfg, eth, transmitter, relayer, mgrdb), nil
}

func NewWithTransmitter(
	cfg *Config,
	chain Chain,
	transmitter Transmitter,
	relayer *bind.TransactOpts,
	mgrdb *EthTxManagerDB,
) *EthTxManager {
	return &EthTxManager{
		cfg:         cfg,
		chain:       chain,
		transmitter: transmitter,
		relayer:     relayer,
		mgrdb:       mgrdb,
		metrics:     metrics.Default,
	}
}

func (txmgr *EthTxManager) SetMetrics(r *metrics.Registry) {
	txmgr.metrics = r
}

func (txmgr *EthTxManager) Relayer() *bind.TransactOpts {
	return txmgr.relayer
}
