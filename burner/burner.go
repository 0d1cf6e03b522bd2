package burner

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

var ErrSwitchChain = errors.New("failed to switch to the source chain")

// BurnRequest identifies a burn by its source tx hash. It is handed to the
// attestation poller and not persisted.
type BurnRequest struct {
	SourceTxHash      ethcommon.Hash
	BlockNumber       *big.Int
	Amount            *big.Int
	MintRecipient     ethcommon.Address
	DestinationDomain uint32

	// approve txs sent before the burn, at most two
	ApproveTxHashes []ethcommon.Hash
}

type Burner struct {
	cfg     *Config
	wallet  Wallet
	auth    *bind.TransactOpts
	metrics *metrics.Registry
}

// New returns a burner that signs with auth. auth must be bound to the
// source chain id.
func New(cfg *Config, wallet Wallet, auth *bind.TransactOpts) (*Burner, error) {
	if auth == nil {
		return nil, common.NewConfigurationError("SOURCE_PRIVATE_KEY")
	}
	if cfg.SourceChain == nil || cfg.SourceChain.ChainID == nil {
		return nil, common.NewConfigurationError("SOURCE_CHAIN_ID")
	}
	if cfg.MaxFee == nil {
		cfg.MaxFee = big.NewInt(0)
	}
	return &Burner{cfg: cfg, wallet: wallet, auth: auth, metrics: metrics.Default}, nil
}

func (b *Burner) SetMetrics(r *metrics.Registry) {
	b.metrics = r
}

func (b *Burner) Owner() ethcommon.Address {
	return b.auth.From
}

// Burn burns amountUSDC on the source chain with escrow as mint recipient on
// the destination domain. It sends at most one approval (two with
// ResetStaleAllowance) and exactly one burn.
func (b *Burner) Burn(ctx context.Context, escrow ethcommon.Address, amountUSDC decimal.Decimal) (*BurnRequest, error) {
	if escrow == (ethcommon.Address{}) {
		return nil, common.NewValidationError("escrow contract address is required")
	}

	amount, err := common.ToUSDCUnits(amountUSDC)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, common.NewValidationError("burn amount must be positive")
	}

	chain, err := b.ensureSourceChain(ctx)
	if err != nil {
		return nil, err
	}

	owner := b.auth.From
	newLogger := logger.WithFields(logger.Fields{
		"escrow": escrow.Hex(),
		"owner":  owner.Hex(),
		"amount": amount,
	})

	token, err := chain.Token(b.cfg.BurnToken)
	if err != nil {
		return nil, err
	}
	callOpts := &bind.CallOpts{Context: ctx}

	balance, err := token.BalanceOf(callOpts, owner)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		newLogger.WithField("balance", balance).Warn("insufficient balance for burn")
		return nil, &common.InsufficientFundsError{Token: b.cfg.BurnToken, Have: balance, Need: amount}
	}

	req := &BurnRequest{
		Amount:            amount,
		MintRecipient:     escrow,
		DestinationDomain: b.cfg.DestinationDomain,
	}

	allowance, err := token.Allowance(callOpts, owner, b.cfg.TokenMessenger)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		if b.cfg.ResetStaleAllowance && allowance.Sign() > 0 {
			txHash, err := b.approve(ctx, chain, token, big.NewInt(0))
			if err != nil {
				return nil, err
			}
			req.ApproveTxHashes = append(req.ApproveTxHashes, txHash)
			newLogger.WithField("tx_hash", txHash.Hex()).Debug("stale allowance reset")
		}
		txHash, err := b.approve(ctx, chain, token, amount)
		if err != nil {
			return nil, err
		}
		req.ApproveTxHashes = append(req.ApproveTxHashes, txHash)
		newLogger.WithField("tx_hash", txHash.Hex()).Debug("token messenger approved")
	}

	messenger, err := chain.TokenMessenger(b.cfg.TokenMessenger)
	if err != nil {
		return nil, err
	}

	tx, err := messenger.DepositForBurn(
		b.transactOpts(ctx),
		amount,
		b.cfg.DestinationDomain,
		common.AddressToBytes32(escrow),
		b.cfg.BurnToken,
		[32]byte{},
		b.cfg.MaxFee,
		b.cfg.MinFinalityThreshold,
	)
	receipt, err := b.wait(ctx, chain, "burn", tx, err)
	if err != nil {
		newLogger.Errorf("burn failed: %v", err)
		return nil, err
	}

	req.SourceTxHash = tx.Hash()
	req.BlockNumber = receipt.BlockNumber

	newLogger.WithFields(logger.Fields{
		"tx_hash": req.SourceTxHash.Hex(),
		"block":   req.BlockNumber,
	}).Info("burn mined")
	return req, nil
}

// ensureSourceChain switches the wallet to the source chain, adding the
// chain definition first when the wallet does not know it.
func (b *Burner) ensureSourceChain(ctx context.Context) (Chain, error) {
	source := b.cfg.SourceChain

	if active, err := b.wallet.ActiveChain(); err == nil && active.ChainID().Cmp(source.ChainID) == 0 {
		return active, nil
	}

	err := b.wallet.SwitchChain(ctx, source.ChainID)
	if errors.Is(err, etherman.ErrUnrecognizedChain) {
		logger.WithField("chain_id", source.ChainID).Info("source chain unknown to wallet, adding it")
		if err := b.wallet.AddChain(ctx, source); err != nil {
			return nil, errors.Join(ErrSwitchChain, err)
		}
		err = b.wallet.SwitchChain(ctx, source.ChainID)
	}
	if err != nil {
		return nil, errors.Join(ErrSwitchChain, err)
	}

	active, err := b.wallet.ActiveChain()
	if err != nil {
		return nil, errors.Join(ErrSwitchChain, err)
	}
	if active.ChainID().Cmp(source.ChainID) != 0 {
		return nil, &common.ChainMismatchError{Expected: common.BigIntClone(source.ChainID), Actual: active.ChainID()}
	}
	return active, nil
}

func (b *Burner) approve(ctx context.Context, chain Chain, token TokenContract, amount *big.Int) (ethcommon.Hash, error) {
	tx, err := token.Approve(b.transactOpts(ctx), b.cfg.TokenMessenger, amount)
	if _, err := b.wait(ctx, chain, "approve", tx, err); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("approve %v for token messenger: %w", amount, err)
	}
	return tx.Hash(), nil
}

func (b *Burner) wait(ctx context.Context, chain Chain, kind string, tx *types.Transaction, err error) (*types.Receipt, error) {
	if err != nil {
		b.metrics.IncChainTx(kind, err)
		return nil, etherman.SendError(err)
	}
	receipt, err := chain.WaitMined(ctx, tx)
	b.metrics.IncChainTx(kind, err)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (b *Burner) transactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *b.auth
	opts.Context = ctx
	return &opts
}
