package ethtxmanager

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

// Start periodically resolves pending submissions until ctx is done.
func (txmgr *EthTxManager) Start(ctx context.Context) error {
	logger.Info("starting eth tx manager")
	defer logger.Info("stopping eth tx manager")

	if txmgr.mgrdb == nil || txmgr.cfg.FrequencyToMonitorPendingTxs <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(txmgr.cfg.FrequencyToMonitorPendingTxs)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := txmgr.Recover(ctx); err != nil {
				switch {
				case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
					return err
				default:
					logger.Errorf("failed to resolve pending finalizations: err=%v", err)
				}
			}
		}
	}
}

// Recover settles every pending record from the transmitter's usedNonces:
//  1. nonce used: minted if we sent a tx for it, already processed otherwise
//  2. nonce unused and no tx sent: reverted, so the message can be retried
//  3. nonce unused and tx sent: reverted once the monitoring timeout passed
//
// It returns the number of records resolved.
func (txmgr *EthTxManager) Recover(ctx context.Context) (int, error) {
	if txmgr.mgrdb == nil {
		return 0, nil
	}

	pending, err := txmgr.mgrdb.GetFinalizationsByStatus(Pending)
	if err != nil {
		logger.Errorf("failed to get pending finalizations: err=%v", err)
		return 0, errors.Join(ErrDBOpGetPendingFinalizing, err)
	}

	resolved := 0
	for _, f := range pending {
		if _, busy := txmgr.inFlight.Load(f.MessageHash); busy {
			continue
		}

		newLogger := logger.WithFields(logger.Fields{
			"message_hash": f.MessageHash.Hex(),
			"mint_tx":      f.MintTxHash.Hex(),
		})

		used, err := txmgr.transmitter.UsedNonces(&bind.CallOpts{Context: ctx}, f.Nonce)
		if err != nil {
			newLogger.Errorf("failed to call usedNonces: err=%v", err)
			return resolved, errors.Join(ErrTransmitterUsedNonces, err)
		}

		var status FinalizationStatus
		reason := ""
		switch {
		case used != nil && used.Sign() != 0 && f.MintTxHash != (ethcommon.Hash{}):
			status = Minted
		case used != nil && used.Sign() != 0:
			status = AlreadyProcessedState
		case f.MintTxHash == (ethcommon.Hash{}):
			status, reason = Reverted, "not submitted"
		case time.Since(f.UpdatedAt) > txmgr.cfg.TimeoutOnMonitoringPendingTxs:
			status, reason = Reverted, "not mined"
		default:
			continue
		}

		if err := txmgr.mgrdb.UpdateStatus(f.MessageHash, status, reason); err != nil {
			newLogger.Errorf("failed to update finalization: err=%v", err)
			return resolved, errors.Join(ErrDBOpUpdateFinalization, err)
		}
		newLogger.WithField("status", status).Info("resolved pending finalization")
		resolved++
	}

	return resolved, nil
}
