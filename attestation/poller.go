package attestation

import (
	"context"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/metrics"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 600
	DefaultInterval    = 2000 * time.Millisecond
)

type Fetcher interface {
	Fetch(ctx context.Context, sourceDomain uint32, txHash ethcommon.Hash) Observation
}

type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Config struct {
	SourceDomain uint32
	MaxAttempts  int
	Interval     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		SourceDomain: common.BaseSepoliaDomain,
		MaxAttempts:  DefaultMaxAttempts,
		Interval:     DefaultInterval,
	}
}

type Request struct {
	TxHash ethcommon.Hash

	// advisory: narrows the candidates when one of them matches
	ExpectedMintRecipient *ethcommon.Address
}

// Poller drives Step until the burn is attested or the attempt budget is
// spent.
type Poller struct {
	cfg     *Config
	fetcher Fetcher
	clock   Clock
	metrics *metrics.Registry
}

// NewPoller applies defaults to a copy of cfg.
func NewPoller(cfg *Config, fetcher Fetcher) *Poller {
	c := *cfg
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Interval < 0 {
		c.Interval = 0
	}
	return &Poller{cfg: &c, fetcher: fetcher, clock: realClock{}, metrics: metrics.Default}
}

func (p *Poller) SetClock(clock Clock) {
	p.clock = clock
}

func (p *Poller) SetMetrics(r *metrics.Registry) {
	p.metrics = r
}

// Poll returns the attested message for req.TxHash, or an
// *common.AttestationTimeoutError after MaxAttempts queries.
func (p *Poller) Poll(ctx context.Context, req Request) (*AttestedMessage, error) {
	newLogger := logger.WithFields(logger.Fields{
		"tx_hash":       req.TxHash.Hex(),
		"source_domain": p.cfg.SourceDomain,
	})

	s := NewState(p.cfg.MaxAttempts, req.ExpectedMintRecipient)
	for {
		obs := p.fetcher.Fetch(ctx, p.cfg.SourceDomain, req.TxHash)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s = Step(s, obs)
		p.metrics.IncAttestationAttempt(string(s.Observed))

		switch s.Phase {
		case PhaseReady:
			newLogger.WithFields(logger.Fields{
				"attempt":        s.Attempts,
				"cctp_version":   s.Result.CctpVersion,
				"mint_recipient": s.Result.Decoded.MintRecipient,
			}).Info("attestation ready")
			if s.ExpectedRecipient != "" && !recipientMatches(s.Result.Decoded.MintRecipient, s.ExpectedRecipient) {
				newLogger.WithField("expected_recipient", s.ExpectedRecipient).Warn("no message matched the expected recipient, using best candidate")
			}
			return s.Result, nil
		case PhaseTimedOut:
			newLogger.WithFields(logger.Fields{
				"attempt":  s.Attempts,
				"observed": s.Observed,
			}).Error("attestation not ready within budget")
			return nil, &common.AttestationTimeoutError{TxHash: req.TxHash.Hex(), Attempts: s.Attempts}
		}

		entry := newLogger.WithFields(logger.Fields{
			"attempt": s.Attempts,
			"phase":   s.Phase,
		})
		if s.LastErr != "" {
			entry = entry.WithField("err", s.LastErr)
		}
		entry.Debug("attestation not ready")

		if err := p.clock.Sleep(ctx, p.cfg.Interval); err != nil {
			return nil, err
		}
	}
}
