package cmd

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/escrow-go/burner"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/TEENet-io/escrow-go/settlement"
)

// EscrowUser's configuration
type EscrowUserConfig struct {
	RpcUrl              string // destination chain json rpc url
	PrivateKey          string // key of the depositor or beneficiary
	UsdcContractAddress string // USDC on the destination chain

	// optional: burn on the source chain with the same key
	SourceRpcUrl   string
	SourceChainId  string
	SourceUsdcAddr string
}

// EscrowUser is a party of an escrow (depositor or beneficiary) acting
// with its own key.
type EscrowUser struct {
	Escrows settlement.EscrowGateway
	Token   escrowman.TokenContract
	Auth    *bind.TransactOpts
	Burner  settlement.BurnInitiator // nil when no source chain is configured

	closers []func()
}

// Create a new EscrowUser object.
func NewEscrowUser(ctx context.Context, euc *EscrowUserConfig) (*EscrowUser, error) {
	eth, err := etherman.NewEtherman(ctx, &etherman.Config{URL: euc.RpcUrl})
	if err != nil {
		logger.Errorf("failed to connect to the destination chain: %v", err)
		return nil, err
	}

	auth, err := etherman.AuthFromHex("PRIVATE_KEY", euc.PrivateKey, eth.ChainID())
	if err != nil {
		eth.Close()
		return nil, err
	}

	tokenAddr := addressOr(euc.UsdcContractAddress, common.PolygonAmoyUSDC)
	escrows, err := escrowman.New(&escrowman.Config{Token: tokenAddr}, eth, nil)
	if err != nil {
		eth.Close()
		return nil, err
	}
	token, err := eth.Token(tokenAddr)
	if err != nil {
		eth.Close()
		return nil, err
	}

	eu := NewEscrowUserWith(escrows, token, auth, nil)
	eu.closers = append(eu.closers, eth.Close)

	if strings.TrimSpace(euc.SourceRpcUrl) != "" {
		sourceChainID, err := parseBigOr(euc.SourceChainId, common.BaseSepoliaChainID, "SOURCE_CHAIN_ID")
		if err != nil {
			eu.Close()
			return nil, err
		}
		sourceAuth, err := etherman.AuthFromHex("PRIVATE_KEY", euc.PrivateKey, sourceChainID)
		if err != nil {
			eu.Close()
			return nil, err
		}

		cfg := burner.DefaultConfig(euc.SourceRpcUrl)
		cfg.SourceChain.ChainID = sourceChainID
		cfg.BurnToken = addressOr(euc.SourceUsdcAddr, common.BaseSepoliaUSDC)

		registry := etherman.NewChainRegistry(nil)
		b, err := burner.New(cfg, burner.NewRegistryWallet(registry), sourceAuth)
		if err != nil {
			registry.Close()
			eu.Close()
			return nil, err
		}
		eu.Burner = b
		eu.closers = append(eu.closers, registry.Close)
	}

	return eu, nil
}

func NewEscrowUserWith(
	escrows settlement.EscrowGateway,
	token escrowman.TokenContract,
	auth *bind.TransactOpts,
	burn settlement.BurnInitiator,
) *EscrowUser {
	return &EscrowUser{
		Escrows: escrows,
		Token:   token,
		Auth:    auth,
		Burner:  burn,
	}
}

// Close and relese resources.
func (eu *EscrowUser) Close() {
	for i := len(eu.closers) - 1; i >= 0; i-- {
		eu.closers[i]()
	}
	eu.closers = nil
}

// Fetch the user's address.
func (eu *EscrowUser) GetAddress() string {
	return eu.Auth.From.Hex()
}

// Fetch the USDC balance of the user's account on the destination chain.
func (eu *EscrowUser) GetUsdcBalance(ctx context.Context) (decimal.Decimal, error) {
	units, err := eu.Token.BalanceOf(&bind.CallOpts{Context: ctx}, eu.Auth.From)
	if err != nil {
		return decimal.Zero, err
	}
	return common.FromUSDCUnits(units), nil
}

func (eu *EscrowUser) Status(ctx context.Context, contract string) (*escrowman.Status, error) {
	addr, err := parseContract(contract)
	if err != nil {
		return nil, err
	}
	return eu.Escrows.GetStatus(ctx, addr)
}

// Deposit approves the escrow for the agreed amount when needed, then
// funds it.
func (eu *EscrowUser) Deposit(ctx context.Context, contract string) (*escrowman.DepositResult, error) {
	addr, err := parseContract(contract)
	if err != nil {
		return nil, err
	}
	return eu.Escrows.Deposit(ctx, addr, eu.Auth)
}

func (eu *EscrowUser) ApproveRelease(ctx context.Context, contract string) (ethcommon.Hash, error) {
	addr, err := parseContract(contract)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return eu.Escrows.ApproveRelease(ctx, addr, eu.Auth)
}

func (eu *EscrowUser) ApproveRefund(ctx context.Context, contract string) (ethcommon.Hash, error) {
	addr, err := parseContract(contract)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return eu.Escrows.ApproveRefund(ctx, addr, eu.Auth)
}

// Burn burns amount USDC on the source chain with the escrow as mint
// recipient. Finalization is left to the server.
func (eu *EscrowUser) Burn(ctx context.Context, contract string, amount string) (*burner.BurnRequest, error) {
	if eu.Burner == nil {
		return nil, common.NewConfigurationError("SOURCE_RPC_URL")
	}
	addr, err := parseContract(contract)
	if err != nil {
		return nil, err
	}
	amountUSDC, err := common.ParseUSDCAmount(amount)
	if err != nil {
		return nil, err
	}
	return eu.Burner.Burn(ctx, addr, amountUSDC)
}

func parseContract(s string) (ethcommon.Address, error) {
	addr, err := common.NormalizeAddress(s)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return addr.Address(), nil
}

// FormatUnits renders raw USDC units for display.
func FormatUnits(units *big.Int) string {
	if units == nil {
		return "0"
	}
	return common.FromUSDCUnits(units).StringFixed(common.USDCDecimals)
}
