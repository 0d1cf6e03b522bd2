package reporter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/TEENet-io/escrow-go/circle"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/onramp"
	"github.com/TEENet-io/escrow-go/settlement"
	"github.com/TEENet-io/escrow-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Wallet providers send either a hex string or {"evmAddress": ...}.
type agreementParties struct {
	DepositorWalletAddress   *common.WalletAddress `json:"depositor_wallet_address" binding:"required"`
	BeneficiaryWalletAddress *common.WalletAddress `json:"beneficiary_wallet_address" binding:"required"`
}

type deployRequest struct {
	Agreement  *agreementParties `json:"agreement" binding:"required"`
	AmountUSDC *decimal.Decimal  `json:"amountUSDC" binding:"required"`
	ConsultID  string            `json:"consult_id"`
}

type depositRequest struct {
	CircleContractID    string           `json:"circle_contract_id" binding:"required"`
	DepositorWalletID   string           `json:"depositor_wallet_id" binding:"required"`
	BeneficiaryWalletID string           `json:"beneficiary_wallet_id"`
	AmountUSDC          *decimal.Decimal `json:"amountUSDC"`
}

type finalizeRequest struct {
	TxHash                string `json:"txHash" binding:"required,txhash"`
	ExpectedMintRecipient string `json:"expectedMintRecipient" binding:"omitempty,ethaddr"`
}

type onrampRequest struct {
	DestinationAddress *common.WalletAddress `json:"destination_address"`
	Network            string                `json:"network"`
	Asset              string                `json:"asset"`
	PaymentAmount      string                `json:"paymentAmount"`
	PaymentCurrency    string                `json:"paymentCurrency"`
}

func (h *HttpReporter) Deploy(c *gin.Context) {
	var req deployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	if !req.AmountUSDC.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountUSDC must be a positive number"})
		return
	}

	depositor := req.Agreement.DepositorWalletAddress.Address()
	beneficiary := req.Agreement.BeneficiaryWalletAddress.Address()

	d, err := h.settlement.Deploy(c.Request.Context(), req.ConsultID, depositor, beneficiary, *req.AmountUSDC)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to deploy escrow contract",
			"details": common.ErrorReason(err),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"status":          "DEPLOYED",
		"contractAddress": d.ContractAddress.Hex(),
		"txHash":          d.DeployTxHash.Hex(),
		"addresses": gin.H{
			"depositor":   req.Agreement.DepositorWalletAddress.String(),
			"beneficiary": req.Agreement.BeneficiaryWalletAddress.String(),
		},
		"amount": common.FromUSDCUnits(d.Amount).String(),
	})
}

func (h *HttpReporter) EscrowStatus(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Ethereum address format"})
		return
	}

	status, err := h.settlement.RefreshStatus(c.Request.Context(), ethcommon.HexToAddress(address))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorReason(err)})
		return
	}
	c.JSON(http.StatusOK, status)
}

// ConsultRecord returns the stored settlement record of a consult.
func (h *HttpReporter) ConsultRecord(c *gin.Context) {
	rec, err := h.settlement.Record(c.Param("id"))
	if err != nil {
		if errors.Is(err, state.ErrEscrowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No escrow recorded for this consult"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec.ToJSON())
}

// Escrows lists the stored escrows at the stage given by ?stage=.
func (h *HttpReporter) Escrows(c *gin.Context) {
	stage := escrowman.ParseStage(strings.ToUpper(c.Query("stage")))
	if stage == escrowman.StageUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stage must be one of OPEN, FUNDED, RELEASED, REFUNDED"})
		return
	}

	records, err := h.settlement.Records(stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]*state.JSONEscrowRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ToJSON())
	}
	c.JSON(http.StatusOK, gin.H{"escrows": out})
}

func (h *HttpReporter) ApproveDeposit(c *gin.Context) {
	h.fundEscrow(c, true)
}

func (h *HttpReporter) Deposit(c *gin.Context) {
	h.fundEscrow(c, false)
}

func (h *HttpReporter) fundEscrow(c *gin.Context, approve bool) {
	failure := "Failed to initiate funds deposit"
	if approve {
		failure = "Failed to initiate deposit approval"
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	if approve && (req.AmountUSDC == nil || !req.AmountUSDC.IsPositive()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountUSDC must be a positive number"})
		return
	}
	if h.funder == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   failure,
			"details": common.NewConfigurationError("CIRCLE_API_KEY").Error(),
		})
		return
	}

	var (
		res     *circle.ContractExecution
		err     error
		message string
	)
	if approve {
		res, err = h.funder.ApproveDeposit(c.Request.Context(), req.CircleContractID, req.DepositorWalletID, *req.AmountUSDC)
		message = "Funds deposit approval initiated"
	} else {
		res, err = h.funder.Deposit(c.Request.Context(), req.CircleContractID, req.DepositorWalletID)
		message = "Funds deposit transaction initiated"
	}
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.WithField("circle_contract_id", req.CircleContractID).Errorf("%s: %v", failure, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure, "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"transactionId": res.ID,
		"status":        res.State,
		"message":       message,
	})
}

func (h *HttpReporter) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": bindErrorMessage(err)})
		return
	}

	freq := settlement.FinalizeRequest{BurnTxHash: ethcommon.HexToHash(req.TxHash)}
	if req.ExpectedMintRecipient != "" {
		recipient := ethcommon.HexToAddress(req.ExpectedMintRecipient)
		freq.ExpectedMintRecipient = &recipient
	}

	out, err := h.settlement.Finalize(c.Request.Context(), freq)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": common.ErrorReason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"mintTx":  out.Result.MintTx(),
		"decoded": out.Attested.Decoded,
	})
}

func (h *HttpReporter) Transaction(c *gin.Context) {
	id := c.Param("id")
	if !common.IsUUID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID format"})
		return
	}
	if h.wallets == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.NewConfigurationError("CIRCLE_API_KEY").Error()})
		return
	}

	tx, err := h.wallets.GetTransaction(c.Request.Context(), id)
	switch {
	case errors.Is(err, circle.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, circle.ErrSchemaMismatch):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid response from Circle API"})
	case err != nil:
		logger.WithField("transaction_id", id).Errorf("failed to fetch transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while fetching transaction"})
	default:
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}

func (h *HttpReporter) OnrampURL(c *gin.Context) {
	var req onrampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	if req.DestinationAddress == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination_address required"})
		return
	}
	if h.onramp == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.NewConfigurationError("CDP_API_KEY_NAME").Error()})
		return
	}

	link, err := h.onramp.URL(c.Request.Context(), onramp.Request{
		DestinationAddress: req.DestinationAddress.String(),
		Network:            req.Network,
		Asset:              req.Asset,
		PaymentAmount:      req.PaymentAmount,
		PaymentCurrency:    req.PaymentCurrency,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"onramp_url": link})
}
