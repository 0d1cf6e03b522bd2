package attestation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/metrics"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedFetcher struct {
	script []Observation
	calls  int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, _ uint32, _ ethcommon.Hash) Observation {
	i := f.calls
	f.calls++
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i]
}

type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func TestPollTimesOutAfterExactAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"messages":[]}`))
	}))
	defer srv.Close()

	p := NewPoller(&Config{SourceDomain: 6, MaxAttempts: 3, Interval: 0}, NewClient(ClientConfig{BaseURL: srv.URL}))
	p.SetMetrics(metrics.NewRegistry())

	res, err := p.Poll(context.Background(), Request{TxHash: testTxHash})
	assert.Nil(t, res)

	var timeout *common.AttestationTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 3, timeout.Attempts)
	assert.Equal(t, testTxHash.Hex(), timeout.TxHash)
	assert.Equal(t, int32(3), calls.Load())
	assert.ErrorIs(t, err, common.ErrAttestationTimeout)
}

func TestPollReadyAfterRetries(t *testing.T) {
	raw := testBurnMessage().Encode()
	ready := Message{
		Message:     "0x" + ethcommon.Bytes2Hex(raw),
		Attestation: "0xaabb",
		Status:      StatusComplete,
		CctpVersion: "2",
	}
	f := &scriptedFetcher{script: []Observation{
		{StatusCode: http.StatusNotFound},
		{StatusCode: http.StatusOK, Messages: []Message{{Message: "0x01", Attestation: AttestationPending, Status: StatusPendingConfirmations, CctpVersion: "2"}}},
		{Err: errors.New("dial tcp: timeout")},
		{StatusCode: http.StatusOK, Messages: []Message{ready}},
	}}
	clock := &fakeClock{}

	p := NewPoller(&Config{SourceDomain: 6, MaxAttempts: 10, Interval: 2 * time.Second}, f)
	p.SetClock(clock)
	p.SetMetrics(metrics.NewRegistry())

	res, err := p.Poll(context.Background(), Request{TxHash: testTxHash})
	require.NoError(t, err)
	assert.Equal(t, 4, f.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, clock.sleeps)
	assert.Equal(t, raw, res.Message)
	assert.Equal(t, []byte{0xaa, 0xbb}, res.Attestation)
	assert.Equal(t, "2000000", res.Decoded.Amount)
}

func TestPollNoSleepAfterLastAttempt(t *testing.T) {
	f := &scriptedFetcher{script: []Observation{{StatusCode: http.StatusOK}}}
	clock := &fakeClock{}

	p := NewPoller(&Config{MaxAttempts: 2, Interval: time.Second}, f)
	p.SetClock(clock)
	p.SetMetrics(metrics.NewRegistry())

	_, err := p.Poll(context.Background(), Request{TxHash: testTxHash})
	assert.ErrorIs(t, err, common.ErrAttestationTimeout)
	assert.Len(t, clock.sleeps, 1)
}

func TestPollStopsOnCancel(t *testing.T) {
	f := &scriptedFetcher{script: []Observation{{StatusCode: http.StatusOK}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPoller(&Config{MaxAttempts: 5}, f)
	p.SetMetrics(metrics.NewRegistry())

	_, err := p.Poll(ctx, Request{TxHash: testTxHash})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.calls)
}

func TestNewPollerDefaults(t *testing.T) {
	cfg := &Config{Interval: -time.Second}
	p := NewPoller(cfg, &scriptedFetcher{})
	assert.Equal(t, DefaultMaxAttempts, p.cfg.MaxAttempts)
	assert.Equal(t, time.Duration(0), p.cfg.Interval)

	// the caller's config is left alone
	assert.Equal(t, 0, cfg.MaxAttempts)
	assert.Equal(t, -time.Second, cfg.Interval)

	cfg.MaxAttempts = 9
	assert.Equal(t, DefaultMaxAttempts, p.cfg.MaxAttempts)
}
