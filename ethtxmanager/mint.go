package ethtxmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"
)

const txKindReceiveMessage = "receive_message"

// Finalize submits receiveMessage(message, attestation). Replays of an
// already consumed message are reported as success with AlreadyProcessed set.
func (txmgr *EthTxManager) Finalize(ctx context.Context, message, att []byte) (*FinalizeResult, error) {
	return txmgr.FinalizeBurn(ctx, ethcommon.Hash{}, message, att)
}

// FinalizeBurn is Finalize with the source burn tx recorded alongside.
func (txmgr *EthTxManager) FinalizeBurn(ctx context.Context, burnTxHash ethcommon.Hash, message, att []byte) (*FinalizeResult, error) {
	header, err := attestation.ParseMessageHeader(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttestedMessage, err)
	}
	if len(att) == 0 {
		return nil, fmt.Errorf("%w: empty attestation", ErrInvalidAttestedMessage)
	}

	messageHash := crypto.Keccak256Hash(message)
	newLogger := logger.WithFields(logger.Fields{
		"message_hash":  messageHash.Hex(),
		"nonce":         common.Shorten(common.ByteSliceToPureHexStr(header.Nonce[:]), 8),
		"source_domain": header.SourceDomain,
	})
	if burnTxHash != (ethcommon.Hash{}) {
		newLogger = newLogger.WithField("burn_tx", burnTxHash.Hex())
	}

	if rec, ok, err := txmgr.getFinalization(messageHash); err != nil {
		newLogger.Errorf("failed to get finalization: err=%v", err)
		return nil, errors.Join(ErrDBOpGetFinalization, err)
	} else if ok && rec.Status.Done() {
		newLogger.WithField("status", rec.Status).Debug("message already finalized, skip submitting")
		txmgr.metrics.IncFinalize(string(AlreadyProcessedState))
		return rec.Result(), nil
	}

	if txmgr.relayer == nil {
		return nil, common.NewConfigurationError("AMOY_DEPLOYER_PRIVATE_KEY")
	}
	if err := txmgr.checkChain(); err != nil {
		return nil, err
	}

	if _, busy := txmgr.inFlight.LoadOrStore(messageHash, struct{}{}); busy {
		return nil, ErrFinalizeInFlight
	}
	defer txmgr.inFlight.Delete(messageHash)

	if err := txmgr.insertPending(&Finalization{
		MessageHash:  messageHash,
		Nonce:        header.Nonce,
		SourceDomain: header.SourceDomain,
		BurnTxHash:   burnTxHash,
	}); err != nil {
		newLogger.Errorf("failed to insert finalization: err=%v", err)
		return nil, errors.Join(ErrDBOpInsertFinalization, err)
	}

	opts := *txmgr.relayer
	opts.Context = ctx
	tx, err := txmgr.transmitter.ReceiveMessage(&opts, message, att)
	if err != nil {
		txmgr.metrics.IncChainTx(txKindReceiveMessage, err)
		var revert *common.ChainRevertError
		if !errors.As(etherman.SendError(err), &revert) {
			// nothing reached the chain; the record stays pending
			newLogger.Errorf("failed to send receiveMessage: err=%v", err)
			txmgr.metrics.IncFinalize("error")
			return nil, err
		}
		return txmgr.handleRevert(ctx, header, messageHash, revert, newLogger)
	}

	newLogger = newLogger.WithField("mint_tx", tx.Hash().Hex())
	newLogger.Debug("receiveMessage tx sent")
	if err := txmgr.setMintTx(messageHash, tx.Hash()); err != nil {
		newLogger.Errorf("failed to record mint tx: err=%v", err)
	}

	_, err = txmgr.chain.WaitMined(ctx, tx)
	txmgr.metrics.IncChainTx(txKindReceiveMessage, err)
	if err != nil {
		var revert *common.ChainRevertError
		if errors.As(err, &revert) {
			return txmgr.handleRevert(ctx, header, messageHash, revert, newLogger)
		}
		// left pending; Recover settles it from usedNonces later
		newLogger.Errorf("failed waiting for receiveMessage: err=%v", err)
		txmgr.metrics.IncFinalize("error")
		return nil, err
	}

	if err := txmgr.updateStatus(messageHash, Minted, ""); err != nil {
		newLogger.Errorf("failed to update finalization: err=%v", err)
		return nil, errors.Join(ErrDBOpUpdateFinalization, err)
	}
	txmgr.metrics.IncFinalize(string(Minted))
	newLogger.Info("message finalized")

	return &FinalizeResult{MintTxHash: tx.Hash()}, nil
}

func (txmgr *EthTxManager) handleRevert(
	ctx context.Context,
	header *attestation.MessageHeader,
	messageHash ethcommon.Hash,
	revert *common.ChainRevertError,
	newLogger *logger.Entry,
) (*FinalizeResult, error) {
	newLogger = newLogger.WithField("reason", revert.Reason)

	if !IsAlreadyProcessed(revert.Reason) {
		newLogger.Error("receiveMessage reverted")
		return nil, txmgr.markReverted(messageHash, revert)
	}

	if txmgr.cfg.VerifyAlreadyProcessed {
		used, err := txmgr.transmitter.UsedNonces(&bind.CallOpts{Context: ctx}, header.Nonce)
		if err != nil {
			newLogger.Errorf("failed to call usedNonces: err=%v", err)
			txmgr.metrics.IncFinalize("error")
			return nil, errors.Join(ErrTransmitterUsedNonces, err)
		}
		if used == nil || used.Sign() == 0 {
			newLogger.Error("revert claims the message was processed but its nonce is unused")
			return nil, txmgr.markReverted(messageHash, revert)
		}
	}

	if err := txmgr.updateStatus(messageHash, AlreadyProcessedState, revert.Reason); err != nil {
		newLogger.Errorf("failed to update finalization: err=%v", err)
		return nil, errors.Join(ErrDBOpUpdateFinalization, err)
	}
	txmgr.metrics.IncFinalize(string(AlreadyProcessedState))
	newLogger.Info("message was already processed")

	return &FinalizeResult{AlreadyProcessed: true}, nil
}

func (txmgr *EthTxManager) markReverted(messageHash ethcommon.Hash, revert *common.ChainRevertError) error {
	txmgr.metrics.IncFinalize("error")
	if err := txmgr.updateStatus(messageHash, Reverted, revert.Reason); err != nil {
		return errors.Join(revert, ErrDBOpUpdateFinalization, err)
	}
	return revert
}

func (txmgr *EthTxManager) checkChain() error {
	expected := txmgr.cfg.ExpectedChainID
	if expected == nil || expected.Sign() == 0 {
		return nil
	}
	if actual := txmgr.chain.ChainID(); actual == nil || actual.Cmp(expected) != 0 {
		return &common.ChainMismatchError{Expected: common.BigIntClone(expected), Actual: actual}
	}
	return nil
}

func (txmgr *EthTxManager) getFinalization(messageHash ethcommon.Hash) (*Finalization, bool, error) {
	if txmgr.mgrdb == nil {
		return nil, false, nil
	}
	return txmgr.mgrdb.GetFinalization(messageHash)
}

func (txmgr *EthTxManager) insertPending(f *Finalization) error {
	if txmgr.mgrdb == nil {
		return nil
	}
	return txmgr.mgrdb.InsertPending(f)
}

func (txmgr *EthTxManager) setMintTx(messageHash, mintTxHash ethcommon.Hash) error {
	if txmgr.mgrdb == nil {
		return nil
	}
	return txmgr.mgrdb.SetMintTx(messageHash, mintTxHash)
}

func (txmgr *EthTxManager) updateStatus(messageHash ethcommon.Hash, status FinalizationStatus, reason string) error {
	if txmgr.mgrdb == nil {
		return nil
	}
	return txmgr.mgrdb.UpdateStatus(messageHash, status, reason)
}
