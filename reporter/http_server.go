// This is the http face of the settlement service.
// It validates requests, hands them to the settlement components
// and maps their errors onto status codes.

package reporter

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TEENet-io/escrow-go/metrics"
)

const (
	ROUTE_HELLO           = "/hello"
	ROUTE_METRICS         = "/metrics"
	ROUTE_DEPLOY          = "/escrow/deploy"
	ROUTE_ESCROW_STATUS   = "/escrow/:address/status"
	ROUTE_CONSULT_RECORD  = "/escrow/consult/:id"
	ROUTE_ESCROWS         = "/escrows"
	ROUTE_DEPOSIT_APPROVE = "/escrow/deposit/approve"
	ROUTE_DEPOSIT         = "/escrow/deposit"
	ROUTE_FINALIZE        = "/cctp/finalize"
	ROUTE_TRANSACTION     = "/wallet/transactions/:id"
	ROUTE_ONRAMP_URL      = "/onramp-url"

	readHeaderTimeout = 10 * time.Second
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream components; the optional ones answer 500 when unset
	settlement Settlement
	funder     DepositFunder
	wallets    TransactionReader
	onramp     OnrampLinker

	metrics *metrics.Registry

	mu     sync.Mutex
	server *http.Server
	closed bool
}

func NewHttpReporter(serverIP string, serverPort string, settlement Settlement, m *metrics.Registry) *HttpReporter {
	if m == nil {
		m = metrics.Default
	}
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		settlement: settlement,
		metrics:    m,
	}
}

func (h *HttpReporter) SetCircle(funder DepositFunder, wallets TransactionReader) {
	h.funder = funder
	h.wallets = wallets
}

func (h *HttpReporter) SetOnramp(linker OnrampLinker) {
	h.onramp = linker
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	registerValidators()

	router := gin.Default()
	router.Use(RequestID(), Observe(h.metrics))

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_METRICS, gin.WrapH(h.metrics.Handler()))

	router.POST(ROUTE_DEPLOY, h.Deploy)
	router.GET(ROUTE_ESCROW_STATUS, h.EscrowStatus)
	router.GET(ROUTE_CONSULT_RECORD, h.ConsultRecord)
	router.GET(ROUTE_ESCROWS, h.Escrows)
	router.POST(ROUTE_DEPOSIT_APPROVE, h.ApproveDeposit)
	router.POST(ROUTE_DEPOSIT, h.Deposit)
	router.POST(ROUTE_FINALIZE, h.Finalize)
	router.GET(ROUTE_TRANSACTION, h.Transaction)
	router.POST(ROUTE_ONRAMP_URL, h.OnrampURL)

	return router
}

// Run serves until Shutdown is called. It returns nil after a clean
// shutdown, or at once if Shutdown came first.
func (h *HttpReporter) Run() error {
	srv := &http.Server{
		Addr:              h.serverIP + ":" + h.serverPort,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.server = srv
	h.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HttpReporter) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	srv := h.server
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}
