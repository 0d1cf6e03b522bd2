package Escrow

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrEmptyBytecode = errors.New("escrow artifact carries no bytecode")

// Artifact is the part of a Hardhat or Foundry build artifact needed to
// deploy the escrow. Foundry nests the bytecode under "object".
type Artifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode []byte          `json:"-"`
}

type rawArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode json.RawMessage `json:"bytecode"`
}

func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseArtifact(data)
}

func ParseArtifact(data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid escrow artifact: %w", err)
	}

	var code string
	if err := json.Unmarshal(raw.Bytecode, &code); err != nil {
		var nested struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw.Bytecode, &nested); err != nil {
			return nil, fmt.Errorf("invalid escrow bytecode: %w", err)
		}
		code = nested.Object
	}

	bytecode := common.FromHex(code)
	if len(bytecode) == 0 {
		return nil, ErrEmptyBytecode
	}

	return &Artifact{ABI: raw.ABI, Bytecode: bytecode}, nil
}

// DeployEscrow deploys a new escrow from the given creation bytecode.
func DeployEscrow(
	auth *bind.TransactOpts,
	backend bind.ContractBackend,
	bytecode []byte,
	depositor common.Address,
	beneficiary common.Address,
	amount *big.Int,
) (common.Address, *types.Transaction, *Escrow, error) {
	if len(bytecode) == 0 {
		return common.Address{}, nil, nil, ErrEmptyBytecode
	}
	parsed, err := EscrowMetaData.GetAbi()
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	if parsed == nil {
		return common.Address{}, nil, nil, errors.New("GetABI returned nil")
	}

	address, tx, contract, err := bind.DeployContract(auth, *parsed, bytecode, backend, depositor, beneficiary, amount)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Escrow{EscrowCaller: EscrowCaller{contract: contract}, EscrowTransactor: EscrowTransactor{contract: contract}, EscrowFilterer: EscrowFilterer{contract: contract}}, nil
}
