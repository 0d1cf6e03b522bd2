package ethtxmanager

import (
	"context"
	"math/big"

	"github.com/TEENet-io/escrow-go/contracts/MessageTransmitterV2"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Transmitter is the part of MessageTransmitterV2 the submitter calls.
type Transmitter interface {
	ReceiveMessage(opts *bind.TransactOpts, message []byte, attestation []byte) (*types.Transaction, error)
	UsedNonces(opts *bind.CallOpts, nonce [32]byte) (*big.Int, error)
}

// Chain is satisfied by *etherman.Etherman.
type Chain interface {
	ChainID() *big.Int
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

func NewTransmitter(addr ethcommon.Address, backend bind.ContractBackend) (Transmitter, error) {
	contract, err := MessageTransmitterV2.NewMessageTransmitterV2(addr, backend)
	if err != nil {
		return nil, err
	}
	return contract, nil
}
