package etherman

import (
	"context"
	"errors"
	"strings"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"
)

var ErrEthermanTransactionReceipt = errors.New("failed to get transaction receipt")

// WaitMined blocks until tx is mined. A mined tx with a failed status is
// reported as *common.ChainRevertError carrying the replayed revert reason.
func (etherman *Etherman) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	newLogger := logger.WithField("tx_hash", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, etherman.client, tx)
	if err != nil {
		newLogger.Errorf("failed waiting for tx to be mined: %v", err)
		return nil, errors.Join(ErrEthermanTransactionReceipt, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := etherman.replayRevertReason(ctx, tx, receipt)
		newLogger.WithField("reason", reason).Warn("tx reverted")
		return receipt, &common.ChainRevertError{TxHash: tx.Hash(), Reason: reason}
	}

	newLogger.WithField("block", receipt.BlockNumber).Debug("tx mined")
	return receipt, nil
}

// WaitDeployed blocks until a contract creation tx is mined and code is present.
func (etherman *Etherman) WaitDeployed(ctx context.Context, tx *types.Transaction) (ethcommon.Address, error) {
	addr, err := bind.WaitDeployed(ctx, etherman.client, tx)
	if err != nil {
		if errors.Is(err, bind.ErrNoCodeAfterDeploy) {
			return ethcommon.Address{}, &common.ChainRevertError{TxHash: tx.Hash(), Reason: err.Error(), Err: err}
		}
		return ethcommon.Address{}, SendError(err)
	}
	return addr, nil
}

// replayRevertReason re-executes tx against the state it was mined on to
// recover the revert string the receipt does not carry.
func (etherman *Etherman) replayRevertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) string {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return ""
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err = etherman.client.CallContract(ctx, msg, receipt.BlockNumber)
	if err == nil {
		return ""
	}
	return RevertReason(err)
}

// IsRevert reports whether err was raised by the EVM. Dial errors, timeouts
// and other transport failures are not reverts.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}

	var revert *common.ChainRevertError
	if errors.As(err, &revert) {
		return true
	}
	var de dataError
	if errors.As(err, &de) && de.ErrorData() != nil {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// SendError wraps a revert returned while submitting a tx as
// *common.ChainRevertError and passes anything else through.
func SendError(err error) error {
	if !IsRevert(err) {
		return err
	}
	var revert *common.ChainRevertError
	if errors.As(err, &revert) {
		return err
	}
	return &common.ChainRevertError{Reason: RevertReason(err), Err: err}
}

type dataError interface {
	ErrorData() interface{}
}

// RevertReason extracts the revert string from an RPC error, preferring the
// ABI-encoded Error(string) payload when the node returns one.
func RevertReason(err error) string {
	if err == nil {
		return ""
	}

	var de dataError
	if errors.As(err, &de) {
		if hexData, ok := de.ErrorData().(string); ok {
			if reason, uerr := abi.UnpackRevert(ethcommon.FromHex(hexData)); uerr == nil {
				return reason
			}
		}
	}

	var revert *common.ChainRevertError
	if errors.As(err, &revert) && revert.Reason != "" {
		return revert.Reason
	}

	msg := err.Error()
	if i := strings.Index(msg, "execution reverted: "); i >= 0 {
		return msg[i+len("execution reverted: "):]
	}
	return msg
}
