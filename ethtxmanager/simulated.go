package ethtxmanager

import (
	"errors"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// SimulatedTransmitter mints the burned amount on a SimulatedNetwork and
// rejects replays the way MessageTransmitterV2 does.
type SimulatedTransmitter struct {
	net *escrowman.SimulatedNetwork

	mu    sync.Mutex
	used  map[[32]byte]bool
	calls int

	// SendRevert makes ReceiveMessage fail before a tx is produced.
	SendRevert string
	// MineRevert makes the produced tx revert when mined.
	MineRevert string
	// SendErr fails ReceiveMessage as if the node was unreachable.
	SendErr error
}

func NewSimulatedTransmitter(net *escrowman.SimulatedNetwork) *SimulatedTransmitter {
	return &SimulatedTransmitter{net: net, used: make(map[[32]byte]bool)}
}

func (t *SimulatedTransmitter) ReceiveMessage(opts *bind.TransactOpts, message []byte, att []byte) (*types.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++

	if t.SendErr != nil {
		return nil, t.SendErr
	}
	if t.SendRevert != "" {
		return nil, errors.New("execution reverted: " + t.SendRevert)
	}
	msg, err := attestation.ParseBurnMessage(message)
	if err != nil {
		return nil, errors.New("execution reverted: Invalid message length")
	}
	if len(att) == 0 {
		return nil, errors.New("execution reverted: Invalid attestation length")
	}
	if t.used[msg.Header.Nonce] {
		return nil, errors.New("execution reverted: Nonce already used")
	}

	tx := t.net.NewTx()
	if t.MineRevert != "" {
		t.net.MarkReverted(tx, t.MineRevert)
		return tx, nil
	}

	t.used[msg.Header.Nonce] = true
	minted := new(big.Int).Set(msg.Amount)
	if msg.FeeExecuted != nil {
		minted.Sub(minted, msg.FeeExecuted)
	}
	t.net.Token.Mint(msg.MintRecipient, minted)
	return tx, nil
}

func (t *SimulatedTransmitter) UsedNonces(opts *bind.CallOpts, nonce [32]byte) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used[nonce] {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// MarkUsed consumes nonce as if another relayer had delivered it.
func (t *SimulatedTransmitter) MarkUsed(nonce [32]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used[nonce] = true
}

func (t *SimulatedTransmitter) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
