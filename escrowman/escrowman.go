package escrowman

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/contracts/Escrow"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEscrowRead   = errors.New("failed to read escrow state")
	ErrEscrowDeploy = errors.New("failed to deploy escrow")
)

// EscrowMan is the gateway to the per-appointment escrow contracts on the
// destination chain.
type EscrowMan struct {
	cfg      *Config
	chain    Chain
	deployer *bind.TransactOpts
	token    TokenContract
	deploy   DeployFunc
	escrowAt EscrowFactory
	metrics  *metrics.Registry

	mu       sync.Mutex
	bytecode []byte

	escrows sync.Map // ethcommon.Address -> EscrowContract
}

// New binds the gateway to a connected chain. deployer may be nil, in which
// case Deploy fails with a configuration error while reads keep working.
func New(cfg *Config, eth *etherman.Etherman, deployer *bind.TransactOpts) (*EscrowMan, error) {
	if eth == nil {
		return nil, common.NewConfigurationError("RPC_URL")
	}
	if cfg.Token == (ethcommon.Address{}) {
		return nil, common.NewConfigurationError("USDC_AMOY_CONTRACT_ADDRESS")
	}

	token, err := eth.Token(cfg.Token)
	if err != nil {
		return nil, err
	}
	deploy, factory := BackendBindings(eth.Client())

	return NewWithBindings(cfg, eth, deployer, token, deploy, factory), nil
}

func NewWithBindings(
	cfg *Config,
	chain Chain,
	deployer *bind.TransactOpts,
	token TokenContract,
	deploy DeployFunc,
	escrowAt EscrowFactory,
) *EscrowMan {
	return &EscrowMan{
		cfg:      cfg,
		chain:    chain,
		deployer: deployer,
		token:    token,
		deploy:   deploy,
		escrowAt: escrowAt,
		metrics:  metrics.Default,
	}
}

func (m *EscrowMan) SetMetrics(r *metrics.Registry) {
	m.metrics = r
}

func (m *EscrowMan) Token() ethcommon.Address {
	return m.cfg.Token
}

// Deploy creates a new escrow for (depositor, beneficiary, amountUSDC) and
// blocks until the creation tx is mined and the code is in place.
func (m *EscrowMan) Deploy(
	ctx context.Context,
	depositor, beneficiary ethcommon.Address,
	amountUSDC decimal.Decimal,
) (*Deployment, error) {
	if depositor == (ethcommon.Address{}) || beneficiary == (ethcommon.Address{}) {
		return nil, common.NewValidationError("depositor and beneficiary addresses are required")
	}
	amount, err := common.ToUSDCUnits(amountUSDC)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, common.NewValidationError("amountUSDC must be a positive number")
	}

	if m.deployer == nil {
		return nil, common.NewConfigurationError("DEPLOYER_PRIVATE_KEY")
	}
	if err := m.checkChain(); err != nil {
		return nil, err
	}
	bytecode, err := m.loadBytecode()
	if err != nil {
		return nil, err
	}

	newLogger := logger.WithFields(logger.Fields{
		"depositor":   depositor.Hex(),
		"beneficiary": beneficiary.Hex(),
		"amount":      amount,
	})

	_, tx, err := m.deploy(m.transactOpts(ctx, m.deployer), bytecode, depositor, beneficiary, amount)
	if err != nil {
		newLogger.Errorf("failed to send escrow creation tx: %v", err)
		m.metrics.IncChainTx("deploy", err)
		return nil, errors.Join(ErrEscrowDeploy, etherman.SendError(err))
	}

	addr, err := m.chain.WaitDeployed(ctx, tx)
	m.metrics.IncChainTx("deploy", err)
	if err != nil {
		newLogger.WithField("tx_hash", tx.Hash().Hex()).Errorf("escrow deployment failed: %v", err)
		return nil, errors.Join(ErrEscrowDeploy, err)
	}

	newLogger.WithFields(logger.Fields{
		"contract": addr.Hex(),
		"tx_hash":  tx.Hash().Hex(),
	}).Info("escrow deployed")

	return &Deployment{
		ContractAddress: addr,
		DeployTxHash:    tx.Hash(),
		Depositor:       depositor,
		Beneficiary:     beneficiary,
		Amount:          amount,
	}, nil
}

// GetStatus reads stage, the seven fixed fields and the token balance of
// the escrow concurrently.
func (m *EscrowMan) GetStatus(ctx context.Context, contract ethcommon.Address) (*Status, error) {
	escrow, err := m.escrow(contract)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	opts := &bind.CallOpts{Context: gctx}

	var (
		rawStage    uint8
		depositor   ethcommon.Address
		beneficiary ethcommon.Address
		amount      *big.Int
		balance     *big.Int
		flags       [4]bool
	)

	g.Go(func() (err error) { rawStage, err = escrow.Stage(opts); return })
	g.Go(func() (err error) { depositor, err = escrow.Depositor(opts); return })
	g.Go(func() (err error) { beneficiary, err = escrow.Beneficiary(opts); return })
	g.Go(func() (err error) { amount, err = escrow.Amount(opts); return })
	g.Go(func() (err error) { balance, err = m.token.BalanceOf(opts, contract); return })

	readers := []func(*bind.CallOpts) (bool, error){
		escrow.DepositorReleaseOk,
		escrow.BeneficiaryReleaseOk,
		escrow.DepositorRefundOk,
		escrow.BeneficiaryRefundOk,
	}
	for i, read := range readers {
		i, read := i, read
		g.Go(func() (err error) { flags[i], err = read(opts); return })
	}

	if err := g.Wait(); err != nil {
		logger.WithField("contract", contract.Hex()).Errorf("failed to read escrow: %v", err)
		return nil, errors.Join(ErrEscrowRead, err)
	}

	var approvals Approvals
	for i, ok := range flags {
		if ok {
			approvals |= Approvals(1 << i)
		}
	}

	stage := StageFromUint8(rawStage)
	if stage == StageUnknown {
		logger.WithFields(logger.Fields{
			"contract":  contract.Hex(),
			"raw_stage": rawStage,
		}).Warn("escrow reports an unknown stage")
	}

	return &Status{
		Contract:    contract,
		Stage:       stage,
		RawStage:    rawStage,
		Depositor:   depositor,
		Beneficiary: beneficiary,
		Amount:      amount,
		Balance:     balance,
		Approvals:   approvals,
	}, nil
}

func (m *EscrowMan) checkChain() error {
	expected := m.cfg.ExpectedChainID
	if expected == nil || expected.Sign() == 0 {
		return nil
	}
	actual := m.chain.ChainID()
	if actual.Cmp(expected) != 0 {
		return &common.ChainMismatchError{Expected: common.BigIntClone(expected), Actual: actual}
	}
	return nil
}

func (m *EscrowMan) loadBytecode() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bytecode != nil {
		return m.bytecode, nil
	}
	if len(m.cfg.Bytecode) > 0 {
		m.bytecode = m.cfg.Bytecode
		return m.bytecode, nil
	}
	if m.cfg.ArtifactPath == "" {
		return nil, common.NewConfigurationError("ESCROW_ARTIFACT_PATH")
	}

	artifact, err := Escrow.LoadArtifact(m.cfg.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: escrow artifact %s: %v", common.ErrConfiguration, m.cfg.ArtifactPath, err)
	}
	m.bytecode = artifact.Bytecode
	return m.bytecode, nil
}

func (m *EscrowMan) escrow(addr ethcommon.Address) (EscrowContract, error) {
	if addr == (ethcommon.Address{}) {
		return nil, common.NewValidationError("escrow contract address is required")
	}
	if cached, ok := m.escrows.Load(addr); ok {
		return cached.(EscrowContract), nil
	}
	contract, err := m.escrowAt(addr)
	if err != nil {
		return nil, err
	}
	actual, _ := m.escrows.LoadOrStore(addr, contract)
	return actual.(EscrowContract), nil
}

// transactOpts copies auth so that concurrent flows sharing a key do not
// race on the context field.
func (m *EscrowMan) transactOpts(ctx context.Context, auth *bind.TransactOpts) *bind.TransactOpts {
	opts := *auth
	opts.Context = ctx
	return &opts
}

// send waits for a tx produced by a binding call. Reverts at either point
// come back as ChainRevertError.
func (m *EscrowMan) send(ctx context.Context, kind string, tx *types.Transaction, err error) (ethcommon.Hash, error) {
	if err != nil {
		m.metrics.IncChainTx(kind, err)
		return ethcommon.Hash{}, etherman.SendError(err)
	}
	_, err = m.chain.WaitMined(ctx, tx)
	m.metrics.IncChainTx(kind, err)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return tx.Hash(), nil
}
