// Server = destination chain (escrow + finalization) + source chain (burn)
// + attestation poller + db/state + optional Circle/onramp + http reporter.
// All components are configured via environment variables (strings!).

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/burner"
	"github.com/TEENet-io/escrow-go/circle"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/database"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/etherman"
	"github.com/TEENet-io/escrow-go/ethtxmanager"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/TEENet-io/escrow-go/onramp"
	"github.com/TEENet-io/escrow-go/reporter"
	"github.com/TEENet-io/escrow-go/settlement"
	"github.com/TEENet-io/escrow-go/state"
)

// Default params for server.
// More often we don't recommend users to tweak those.
// So we list them here.
const (
	frequencyToMonitorPendingTxs  = 30 * time.Second
	timeoutOnMonitoringPendingTxs = 10 * time.Minute

	timeoutOnStartup  = 30 * time.Second
	timeoutOnShutdown = 10 * time.Second
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
// Empty fields fall back to the CCTP testnet defaults.
type EscrowServerConfig struct {
	// destination chain (escrow lives here)
	RpcUrl                 string // json rpc url
	DeployerPrivateKey     string // deploys escrows; empty disables /escrow/deploy
	RelayerPrivateKey      string // submits receiveMessage; falls back to DeployerPrivateKey
	ExpectedChainId        string // eg. 80002
	EscrowArtifactPath     string // build artifact with the escrow bytecode
	UsdcContractAddress    string // USDC on the destination chain
	MessageTransmitterAddr string
	DestinationDomain      string // eg. 7

	// source chain (burn happens here)
	SourceRpcUrl          string
	SourceChainId         string // eg. 84532
	SourcePrivateKey      string // empty disables the burn step
	SourceUsdcAddress     string
	TokenMessengerAddress string
	SourceDomain          string // eg. 6

	// attestation
	IrisBaseUrl                string
	AttestationMaxAttempts     string
	AttestationIntervalMs      string
	AttestationRequestsPerSecs string

	// state side
	DbFilePath string // db file path, empty for in-memory

	// Circle developer-controlled wallets, optional
	CircleApiKey       string
	CircleEntitySecret string
	CircleBaseUrl      string

	// Coinbase onramp, optional
	CdpApiKeyName       string
	CdpApiKeyPrivateKey string

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080
}

// EscrowServer holds the objects that consists of the escrow server.
type EscrowServer struct {
	DestEnv *etherman.Etherman

	MyDb         *sql.DB
	MyStateDb    *state.StateDB
	MyEthMgrDb   *ethtxmanager.EthTxManagerDB
	MyEscrowMan  *escrowman.EscrowMan
	MyBurner     *burner.Burner // nil without SourcePrivateKey
	MyPoller     *attestation.Poller
	MyEthTxMgr   *ethtxmanager.EthTxManager
	Orchestrator *settlement.Orchestrator
	Reporter     *reporter.HttpReporter
	Metrics      *metrics.Registry

	sourceChains *etherman.ChainRegistry
}

// NewEscrowServer connects to the destination chain and wires every
// component. Nothing runs until Run is called.
func NewEscrowServer(ctx context.Context, esc *EscrowServerConfig) (*EscrowServer, error) {
	m := metrics.Default

	expectedChainID, err := parseBigOr(esc.ExpectedChainId, common.PolygonAmoyChainID, "EXPECTED_CHAIN_ID")
	if err != nil {
		return nil, err
	}
	sourceChainID, err := parseBigOr(esc.SourceChainId, common.BaseSepoliaChainID, "SOURCE_CHAIN_ID")
	if err != nil {
		return nil, err
	}
	sourceDomain, err := parseUint32Or(esc.SourceDomain, common.BaseSepoliaDomain, "SOURCE_DOMAIN")
	if err != nil {
		return nil, err
	}
	destDomain, err := parseUint32Or(esc.DestinationDomain, common.PolygonAmoyDomain, "DESTINATION_DOMAIN")
	if err != nil {
		return nil, err
	}
	maxAttempts, err := parseIntOr(esc.AttestationMaxAttempts, attestation.DefaultMaxAttempts, "ATTESTATION_MAX_ATTEMPTS")
	if err != nil {
		return nil, err
	}
	intervalMs, err := parseIntOr(esc.AttestationIntervalMs, int(attestation.DefaultInterval/time.Millisecond), "ATTESTATION_INTERVAL_MS")
	if err != nil {
		return nil, err
	}
	rps, err := parseIntOr(esc.AttestationRequestsPerSecs, attestation.MaxRequestsPerSecond, "ATTESTATION_REQUESTS_PER_SECOND")
	if err != nil {
		return nil, err
	}

	// 1) Destination chain.
	dialCtx, cancel := context.WithTimeout(ctx, timeoutOnStartup)
	defer cancel()
	destEth, err := etherman.NewEtherman(dialCtx, &etherman.Config{URL: esc.RpcUrl, ExpectedChainID: expectedChainID})
	if err != nil {
		logger.Errorf("failed to connect to destination chain: %v", err)
		return nil, err
	}
	chainID := destEth.ChainID()

	deployer, err := optionalAuth("DEPLOYER_PRIVATE_KEY", esc.DeployerPrivateKey, chainID)
	if err != nil {
		destEth.Close()
		return nil, err
	}
	relayerKey := esc.RelayerPrivateKey
	if strings.TrimSpace(relayerKey) == "" {
		relayerKey = esc.DeployerPrivateKey
	}
	relayer, err := optionalAuth("AMOY_DEPLOYER_PRIVATE_KEY", relayerKey, chainID)
	if err != nil {
		destEth.Close()
		return nil, err
	}

	// 2) Create sql db, and related state_db, eth_tx_manager_db.
	sqldb, err := database.OpenSqlite(esc.DbFilePath)
	if err != nil {
		destEth.Close()
		logger.Errorf("failed to open db file: %v", err)
		return nil, err
	}
	closeAll := func() {
		sqldb.Close()
		destEth.Close()
	}

	myStateDb, err := state.NewStateDB(sqldb)
	if err != nil {
		closeAll()
		logger.Errorf("failed to create state db: %v", err)
		return nil, err
	}
	myEthTxMgrDb, err := ethtxmanager.NewEthTxManagerDB(sqldb)
	if err != nil {
		closeAll()
		logger.Errorf("failed to create eth tx manager db: %v", err)
		return nil, err
	}

	// 3) Escrow gateway.
	myEscrowMan, err := escrowman.New(&escrowman.Config{
		ExpectedChainID: expectedChainID,
		Token:           addressOr(esc.UsdcContractAddress, common.PolygonAmoyUSDC),
		ArtifactPath:    esc.EscrowArtifactPath,
	}, destEth, deployer)
	if err != nil {
		closeAll()
		logger.Errorf("failed to create escrow gateway: %v", err)
		return nil, err
	}
	myEscrowMan.SetMetrics(m)

	// 4) Finalization submitter.
	txCfg := ethtxmanager.DefaultConfig()
	txCfg.Transmitter = addressOr(esc.MessageTransmitterAddr, common.MessageTransmitterV2Testnet)
	txCfg.ExpectedChainID = expectedChainID
	txCfg.FrequencyToMonitorPendingTxs = frequencyToMonitorPendingTxs
	txCfg.TimeoutOnMonitoringPendingTxs = timeoutOnMonitoringPendingTxs
	myEthTxMgr, err := ethtxmanager.New(txCfg, destEth, relayer, myEthTxMgrDb)
	if err != nil {
		closeAll()
		logger.Errorf("failed to create eth tx manager: %v", err)
		return nil, err
	}
	myEthTxMgr.SetMetrics(m)

	// 5) Attestation poller.
	iris := attestation.NewClient(attestation.ClientConfig{
		BaseURL:           esc.IrisBaseUrl,
		RequestsPerSecond: float64(rps),
	})
	myPoller := attestation.NewPoller(&attestation.Config{
		SourceDomain: sourceDomain,
		MaxAttempts:  maxAttempts,
		Interval:     time.Duration(intervalMs) * time.Millisecond,
	}, iris)
	myPoller.SetMetrics(m)

	// 6) Burn initiator. The source chain is dialed on first use.
	sourceChains := etherman.NewChainRegistry(nil)
	var (
		myBurner *burner.Burner
		burnStep settlement.BurnInitiator
	)
	if strings.TrimSpace(esc.SourcePrivateKey) != "" {
		sourceAuth, err := etherman.AuthFromHex("SOURCE_PRIVATE_KEY", esc.SourcePrivateKey, sourceChainID)
		if err != nil {
			closeAll()
			return nil, err
		}
		burnCfg := burner.DefaultConfig(esc.SourceRpcUrl)
		burnCfg.SourceChain.ChainID = sourceChainID
		burnCfg.DestinationDomain = destDomain
		burnCfg.BurnToken = addressOr(esc.SourceUsdcAddress, common.BaseSepoliaUSDC)
		burnCfg.TokenMessenger = addressOr(esc.TokenMessengerAddress, common.TokenMessengerV2Testnet)

		myBurner, err = burner.New(burnCfg, burner.NewRegistryWallet(sourceChains), sourceAuth)
		if err != nil {
			closeAll()
			return nil, err
		}
		myBurner.SetMetrics(m)
		burnStep = myBurner
	} else {
		logger.Warn("SOURCE_PRIVATE_KEY is not set, burning on the source chain is disabled")
	}

	// 7) Orchestrator + http reporter.
	orchestrator := settlement.New(myEscrowMan, burnStep, myPoller, myEthTxMgr, myStateDb)

	httpReporter := reporter.NewHttpReporter(esc.HttpIp, esc.HttpPort, orchestrator, m)

	if strings.TrimSpace(esc.CircleApiKey) != "" {
		circleClient, err := circle.NewClient(circle.Config{
			BaseURL:      esc.CircleBaseUrl,
			APIKey:       esc.CircleApiKey,
			EntitySecret: esc.CircleEntitySecret,
		})
		if err != nil {
			closeAll()
			return nil, err
		}
		circleClient.SetMetrics(m)
		funder, err := circle.NewEscrowFunder(circleClient, addressOr(esc.UsdcContractAddress, common.PolygonAmoyUSDC).Hex())
		if err != nil {
			closeAll()
			return nil, err
		}
		httpReporter.SetCircle(funder, circleClient)
	} else {
		logger.Warn("CIRCLE_API_KEY is not set, Circle wallet routes are disabled")
	}

	if strings.TrimSpace(esc.CdpApiKeyName) != "" {
		linker, err := onramp.NewClient(onramp.Config{
			KeyName:    esc.CdpApiKeyName,
			PrivateKey: esc.CdpApiKeyPrivateKey,
		})
		if err != nil {
			closeAll()
			return nil, err
		}
		httpReporter.SetOnramp(linker)
	}

	logger.WithFields(logger.Fields{
		"chain_id":    chainID,
		"token":       myEscrowMan.Token().Hex(),
		"transmitter": txCfg.Transmitter.Hex(),
		"can_deploy":  deployer != nil,
		"can_relay":   relayer != nil,
		"can_burn":    myBurner != nil,
	}).Info("escrow server configured")

	return &EscrowServer{
		DestEnv:      destEth,
		MyDb:         sqldb,
		MyStateDb:    myStateDb,
		MyEthMgrDb:   myEthTxMgrDb,
		MyEscrowMan:  myEscrowMan,
		MyBurner:     myBurner,
		MyPoller:     myPoller,
		MyEthTxMgr:   myEthTxMgr,
		Orchestrator: orchestrator,
		Reporter:     httpReporter,
		Metrics:      m,
		sourceChains: sourceChains,
	}, nil
}

// Run resolves finalizations left pending by a previous run, then serves
// http and monitors pending txs until ctx is cancelled.
func (s *EscrowServer) Run(ctx context.Context) error {
	if n, err := s.MyEthTxMgr.Recover(ctx); err != nil {
		logger.Warnf("failed to recover pending finalizations: %v", err)
	} else if n > 0 {
		logger.WithField("resolved", n).Info("recovered pending finalizations")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.MyEthTxMgr.Start(gctx) // eth-side tx manager
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return s.Reporter.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeoutOnShutdown)
		defer cancel()
		return s.Reporter.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *EscrowServer) Close() {
	s.sourceChains.Close()
	s.DestEnv.Close()
	if err := s.MyDb.Close(); err != nil {
		logger.Warnf("failed to close db: %v", err)
	}
}

// Create, then start the escrow server and wait.
// Press Ctrl-C to kill the server.
func StartEscrowServerAndWait(esc *EscrowServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up a signal channel to listen for Ctrl-C (SIGINT) or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		fmt.Printf("Received signal: %v, cancelling context...\n", sig)
		cancel()
	}()

	server, err := NewEscrowServer(ctx, esc)
	if err != nil {
		logger.Fatalf("failed to create escrow server: %v", err)
		return
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		logger.Errorf("escrow server stopped: %v", err)
	}
}

// optionalAuth returns nil for an empty key so that the component it feeds
// reports a configuration error only when it is actually used.
func optionalAuth(name, hexKey string, chainID *big.Int) (*bind.TransactOpts, error) {
	if strings.TrimSpace(hexKey) == "" {
		return nil, nil
	}
	return etherman.AuthFromHex(name, hexKey, chainID)
}

func addressOr(s string, fallback string) ethcommon.Address {
	if strings.TrimSpace(s) == "" {
		return ethcommon.HexToAddress(fallback)
	}
	return ethcommon.HexToAddress(strings.TrimSpace(s))
}

func parseBigOr(s string, fallback *big.Int, name string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.BigIntClone(fallback), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, common.NewValidationError("%s must be an integer, got %q", name, s)
	}
	return v, nil
}

func parseUint32Or(s string, fallback uint32, name string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, common.NewValidationError("%s must be an unsigned integer, got %q", name, s)
	}
	return uint32(v), nil
}

func parseIntOr(s string, fallback int, name string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, common.NewValidationError("%s must be a non-negative integer, got %q", name, s)
	}
	return v, nil
}
