package circle

import (
	"context"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/shopspring/decimal"
)

// EscrowFunder funds escrows imported into Circle from developer-controlled
// depositor wallets.
type EscrowFunder struct {
	client *Client
	// USDC on the escrow chain
	token string
}

func NewEscrowFunder(client *Client, token string) (*EscrowFunder, error) {
	if !common.IsHexAddress(token) {
		return nil, common.NewConfigurationError("USDC_AMOY_CONTRACT_ADDRESS")
	}
	return &EscrowFunder{client: client, token: token}, nil
}

func (f *EscrowFunder) Client() *Client {
	return f.client
}

// ApproveDeposit lets the escrow behind contractID pull amountUSDC from the
// depositor wallet.
func (f *EscrowFunder) ApproveDeposit(ctx context.Context, contractID, depositorWalletID string, amountUSDC decimal.Decimal) (*ContractExecution, error) {
	amount, err := common.ToUSDCUnits(amountUSDC)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, common.NewValidationError("amountUSDC must be a positive number")
	}

	escrow, err := f.client.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return f.client.CreateContractExecution(ctx, ContractExecutionRequest{
		WalletID:             depositorWalletID,
		ContractAddress:      f.token,
		AbiFunctionSignature: "approve(address,uint256)",
		AbiParameters:        []interface{}{escrow, amount.String()},
		FeeLevel:             FeeLevelHigh,
	})
}

// Deposit calls deposit() on the escrow from the depositor wallet.
func (f *EscrowFunder) Deposit(ctx context.Context, contractID, depositorWalletID string) (*ContractExecution, error) {
	escrow, err := f.client.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return f.client.CreateContractExecution(ctx, ContractExecutionRequest{
		WalletID:             depositorWalletID,
		ContractAddress:      escrow,
		AbiFunctionSignature: "deposit()",
		FeeLevel:             FeeLevelMedium,
	})
}
