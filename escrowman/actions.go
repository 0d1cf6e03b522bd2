package escrowman

import (
	"context"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

// Deposit funds an OPEN escrow from the depositor's own balance. Balance is
// checked before anything is sent; an approval is only sent when the current
// allowance does not cover the amount.
func (m *EscrowMan) Deposit(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (*DepositResult, error) {
	if auth == nil {
		return nil, common.NewConfigurationError("depositor signing key")
	}

	status, err := m.GetStatus(ctx, contract)
	if err != nil {
		return nil, err
	}
	if status.Stage != StageOpen {
		return nil, &common.InvalidStageError{Stage: status.Stage.String(), Required: StageOpen.String()}
	}

	caller := auth.From
	callOpts := &bind.CallOpts{Context: ctx}
	newLogger := logger.WithFields(logger.Fields{
		"contract": contract.Hex(),
		"caller":   caller.Hex(),
		"amount":   status.Amount,
	})

	balance, err := m.token.BalanceOf(callOpts, caller)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(status.Amount) < 0 {
		newLogger.WithField("balance", balance).Warn("insufficient balance for deposit")
		return nil, &common.InsufficientFundsError{Token: m.cfg.Token, Have: balance, Need: status.Amount}
	}

	res := &DepositResult{}
	opts := m.transactOpts(ctx, auth)

	allowance, err := m.token.Allowance(callOpts, caller, contract)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(status.Amount) < 0 {
		tx, err := m.token.Approve(opts, contract, status.Amount)
		res.ApproveTxHash, err = m.send(ctx, "approve", tx, err)
		if err != nil {
			newLogger.Errorf("approval failed: %v", err)
			return nil, err
		}
		newLogger.WithField("tx_hash", res.ApproveTxHash.Hex()).Debug("escrow allowance approved")
	}

	escrow, err := m.escrow(contract)
	if err != nil {
		return nil, err
	}
	tx, err := escrow.Deposit(opts)
	res.DepositTxHash, err = m.send(ctx, "deposit", tx, err)
	if err != nil {
		newLogger.Errorf("deposit failed: %v", err)
		return nil, err
	}

	newLogger.WithField("tx_hash", res.DepositTxHash.Hex()).Info("escrow funded")
	return res, nil
}

func (m *EscrowMan) ApproveRelease(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error) {
	return m.approve(ctx, contract, auth, true)
}

func (m *EscrowMan) ApproveRefund(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error) {
	return m.approve(ctx, contract, auth, false)
}

// approve gates on the freshly read state before submitting. The contract
// still enforces the same rules.
func (m *EscrowMan) approve(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts, release bool) (ethcommon.Hash, error) {
	if auth == nil {
		return ethcommon.Hash{}, common.NewConfigurationError("approver signing key")
	}

	status, err := m.GetStatus(ctx, contract)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	if !status.IsParty(auth.From) {
		return ethcommon.Hash{}, &common.UnauthorizedError{Caller: auth.From}
	}
	if status.Stage != StageFunded {
		return ethcommon.Hash{}, &common.InvalidStageError{Stage: status.Stage.String(), Required: StageFunded.String()}
	}

	escrow, err := m.escrow(contract)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	kind := "approve_refund"
	send := escrow.ApproveRefund
	if release {
		kind = "approve_release"
		send = escrow.ApproveRelease
	}

	tx, err := send(m.transactOpts(ctx, auth))
	txHash, err := m.send(ctx, kind, tx, err)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	logger.WithFields(logger.Fields{
		"contract": contract.Hex(),
		"caller":   auth.From.Hex(),
		"tx_hash":  txHash.Hex(),
	}).Infof("%s submitted", kind)
	return txHash, nil
}
