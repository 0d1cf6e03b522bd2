package circle

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	FeeLevelLow    = "LOW"
	FeeLevelMedium = "MEDIUM"
	FeeLevelHigh   = "HIGH"
)

// ContractExecutionRequest asks a developer-controlled wallet to call
// abiFunctionSignature on ContractAddress.
type ContractExecutionRequest struct {
	IdempotencyKey         string        `json:"idempotencyKey"`
	EntitySecretCiphertext string        `json:"entitySecretCiphertext"`
	WalletID               string        `json:"walletId"`
	ContractAddress        string        `json:"contractAddress"`
	AbiFunctionSignature   string        `json:"abiFunctionSignature"`
	AbiParameters          []interface{} `json:"abiParameters"`
	FeeLevel               string        `json:"feeLevel,omitempty"`
}

type ContractExecution struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// Transaction is the subset of a Circle transaction the service exposes.
type Transaction struct {
	ID              string   `json:"id"`
	Amounts         []string `json:"amounts,omitempty"`
	State           string   `json:"state"`
	CreateDate      string   `json:"createDate"`
	Blockchain      string   `json:"blockchain"`
	TransactionType string   `json:"transactionType"`
	UpdateDate      string   `json:"updateDate"`
}

func (t *Transaction) validate() error {
	for name, v := range map[string]string{
		"id":              t.ID,
		"state":           t.State,
		"createDate":      t.CreateDate,
		"blockchain":      t.Blockchain,
		"transactionType": t.TransactionType,
		"updateDate":      t.UpdateDate,
	} {
		if v == "" {
			return fmt.Errorf("%w: transaction.%s is missing", ErrSchemaMismatch, name)
		}
	}
	return nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type contractData struct {
	Contract struct {
		ID              string `json:"id"`
		ContractAddress string `json:"contractAddress"`
	} `json:"contract"`
}

type transactionData struct {
	Transaction *Transaction `json:"transaction"`
}

type publicKeyData struct {
	PublicKey string `json:"publicKey"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer from Circle.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	RequestID  string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("circle api error: status=%d, code=%d, message=%s, request_id=%s",
		e.StatusCode, e.Code, e.Message, e.RequestID)
}

func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode == 408 || e.StatusCode >= 500
}
