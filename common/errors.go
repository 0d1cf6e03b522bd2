package common

import (
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrUnauthorized  = errors.New("caller is neither depositor nor beneficiary")
	ErrInvalidStage  = errors.New("invalid escrow stage")

	ErrAttestationTimeout = errors.New("attestation timeout")
)

func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewConfigurationError reports a missing credential or endpoint.
func NewConfigurationError(name string) error {
	return fmt.Errorf("%w: %s is not set", ErrConfiguration, name)
}

type ChainMismatchError struct {
	Expected *big.Int
	Actual   *big.Int
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf("connected to chainId=%v, expected CHAIN_ID=%v", e.Actual, e.Expected)
}

type InsufficientFundsError struct {
	Token ethcommon.Address
	Have  *big.Int
	Need  *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance of token %s: have %v, need %v", e.Token.Hex(), e.Have, e.Need)
}

type AttestationTimeoutError struct {
	TxHash   string
	Attempts int
}

func (e *AttestationTimeoutError) Error() string {
	return fmt.Sprintf("message/attestation for %s not ready after %d attempts (timeout)", e.TxHash, e.Attempts)
}

func (e *AttestationTimeoutError) Unwrap() error { return ErrAttestationTimeout }

type UnauthorizedError struct {
	Caller ethcommon.Address
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthorized.Error(), e.Caller.Hex())
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

type InvalidStageError struct {
	Stage    string
	Required string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("%s: stage is %s, must be %s", ErrInvalidStage.Error(), e.Stage, e.Required)
}

func (e *InvalidStageError) Unwrap() error { return ErrInvalidStage }

// ChainRevertError carries the raw revert reason of a rejected transaction.
type ChainRevertError struct {
	TxHash ethcommon.Hash
	Reason string
	Err    error
}

func (e *ChainRevertError) Error() string {
	msg := "execution reverted"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.TxHash != (ethcommon.Hash{}) {
		msg += " (tx " + e.TxHash.Hex() + ")"
	}
	return msg
}

func (e *ChainRevertError) Unwrap() error { return e.Err }

// ErrorReason returns the most specific human readable message for err.
func ErrorReason(err error) string {
	if err == nil {
		return ""
	}
	var revert *ChainRevertError
	if errors.As(err, &revert) && revert.Reason != "" {
		return revert.Reason
	}
	return err.Error()
}
