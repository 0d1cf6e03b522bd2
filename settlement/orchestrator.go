package settlement

import (
	"context"
	"errors"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/burner"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/state"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Orchestrator sequences deploy, burn, finalize and status refresh for one
// appointment. Each step is also callable on its own. The chain is the
// source of truth; the state db only caches what the steps observed.
type Orchestrator struct {
	escrows   EscrowGateway
	burner    BurnInitiator
	poller    AttestationPoller
	finalizer Finalizer
	statedb   *state.StateDB
}

// New wires the steps. burner and statedb may be nil: without a burner Burn
// fails with a configuration error, without statedb nothing is cached.
func New(
	escrows EscrowGateway,
	burner BurnInitiator,
	poller AttestationPoller,
	finalizer Finalizer,
	statedb *state.StateDB,
) *Orchestrator {
	return &Orchestrator{
		escrows:   escrows,
		burner:    burner,
		poller:    poller,
		finalizer: finalizer,
		statedb:   statedb,
	}
}

func (o *Orchestrator) StateDB() *state.StateDB {
	return o.statedb
}

func (o *Orchestrator) Deploy(
	ctx context.Context,
	consultID string,
	depositor, beneficiary ethcommon.Address,
	amountUSDC decimal.Decimal,
) (*escrowman.Deployment, error) {
	d, err := o.escrows.Deploy(ctx, depositor, beneficiary, amountUSDC)
	if err != nil {
		return nil, err
	}

	o.cache(d.ContractAddress, func(db *state.StateDB) error {
		return db.InsertEscrow(&state.EscrowRecord{
			ContractAddress: d.ContractAddress,
			ConsultID:       consultID,
			DeployTxHash:    d.DeployTxHash,
			Depositor:       d.Depositor,
			Beneficiary:     d.Beneficiary,
			Amount:          d.Amount,
			Stage:           escrowman.StageOpen,
		})
	})
	return d, nil
}

func (o *Orchestrator) Burn(ctx context.Context, contract ethcommon.Address, amountUSDC decimal.Decimal) (*burner.BurnRequest, error) {
	if o.burner == nil {
		return nil, common.NewConfigurationError("SOURCE_PRIVATE_KEY")
	}
	req, err := o.burner.Burn(ctx, contract, amountUSDC)
	if err != nil {
		return nil, err
	}

	o.cache(contract, func(db *state.StateDB) error {
		return db.SetBurnTx(contract, req.SourceTxHash)
	})
	return req, nil
}

// Finalize waits for the attestation of req.BurnTxHash and submits it. Only
// the attestation poll retries.
func (o *Orchestrator) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeOutcome, error) {
	attested, err := o.poller.Poll(ctx, attestation.Request{
		TxHash:                req.BurnTxHash,
		ExpectedMintRecipient: req.ExpectedMintRecipient,
	})
	if err != nil {
		return nil, err
	}

	res, err := o.finalizer.FinalizeBurn(ctx, req.BurnTxHash, attested.Message, attested.Attestation)
	if err != nil {
		return &FinalizeOutcome{Attested: attested}, err
	}

	recipient := req.ExpectedMintRecipient
	if recipient == nil && ethcommon.IsHexAddress(attested.Decoded.MintRecipient) {
		addr := ethcommon.HexToAddress(attested.Decoded.MintRecipient)
		recipient = &addr
	}
	if recipient != nil {
		o.cache(*recipient, func(db *state.StateDB) error {
			return db.SetMintTx(*recipient, res.MintTx())
		})
	}

	return &FinalizeOutcome{Attested: attested, Result: res}, nil
}

// RefreshStatus re-reads the escrow and caches its stage.
func (o *Orchestrator) RefreshStatus(ctx context.Context, contract ethcommon.Address) (*escrowman.Status, error) {
	status, err := o.escrows.GetStatus(ctx, contract)
	if err != nil {
		return nil, err
	}
	o.cache(contract, func(db *state.StateDB) error {
		return db.UpdateStage(contract, status.Stage)
	})
	return status, nil
}

func (o *Orchestrator) Stage(ctx context.Context, contract ethcommon.Address) (escrowman.Stage, error) {
	status, err := o.RefreshStatus(ctx, contract)
	if err != nil {
		return escrowman.StageUnknown, err
	}
	return status.Stage, nil
}

func (o *Orchestrator) Deposit(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (*escrowman.DepositResult, error) {
	res, err := o.escrows.Deposit(ctx, contract, auth)
	if err != nil {
		return nil, err
	}
	o.refreshQuietly(ctx, contract)
	return res, nil
}

func (o *Orchestrator) ApproveRelease(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error) {
	hash, err := o.escrows.ApproveRelease(ctx, contract, auth)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	o.refreshQuietly(ctx, contract)
	return hash, nil
}

func (o *Orchestrator) ApproveRefund(ctx context.Context, contract ethcommon.Address, auth *bind.TransactOpts) (ethcommon.Hash, error) {
	hash, err := o.escrows.ApproveRefund(ctx, contract, auth)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	o.refreshQuietly(ctx, contract)
	return hash, nil
}

// Settle runs deploy, burn, finalize and a status refresh in order. The
// first error stops the sequence and is returned with the progress so far.
func (o *Orchestrator) Settle(ctx context.Context, req SettleRequest) (*Progress, error) {
	p := &Progress{ConsultID: req.ConsultID}
	newLogger := logger.WithField("consult_id", req.ConsultID)

	fail := func(step Step, err error) (*Progress, error) {
		p.FailedStep = step
		newLogger.WithFields(logger.Fields{
			"step":     step,
			"contract": p.Contract.Hex(),
		}).Errorf("settlement halted: %v", err)
		return p, err
	}

	req = o.resume(req, newLogger)
	amountUSDC := req.AmountUSDC
	if req.Contract != nil {
		p.Contract = *req.Contract
		if !amountUSDC.IsPositive() && req.BurnTxHash == nil {
			status, err := o.escrows.GetStatus(ctx, p.Contract)
			if err != nil {
				return fail(StepRefresh, err)
			}
			amountUSDC = common.FromUSDCUnits(status.Amount)
		}
	} else {
		d, err := o.Deploy(ctx, req.ConsultID, req.Depositor, req.Beneficiary, amountUSDC)
		if err != nil {
			return fail(StepDeploy, err)
		}
		p.Deployment = d
		p.Contract = d.ContractAddress
		p.done(StepDeploy)
	}
	newLogger = newLogger.WithField("contract", p.Contract.Hex())

	burnTxHash := ethcommon.Hash{}
	if req.BurnTxHash != nil {
		burnTxHash = *req.BurnTxHash
	} else {
		b, err := o.Burn(ctx, p.Contract, amountUSDC)
		if err != nil {
			return fail(StepBurn, err)
		}
		p.Burn = b
		burnTxHash = b.SourceTxHash
		p.done(StepBurn)
	}
	newLogger.WithField("burn_tx", burnTxHash.Hex()).Debug("waiting for attestation")

	contract := p.Contract
	out, err := o.Finalize(ctx, FinalizeRequest{BurnTxHash: burnTxHash, ExpectedMintRecipient: &contract})
	if out != nil {
		p.Attested = out.Attested
	}
	if err != nil {
		step := StepFinalize
		if p.Attested == nil {
			step = StepAttest
		}
		return fail(step, err)
	}
	p.done(StepAttest)
	p.Finalized = out.Result
	p.done(StepFinalize)

	status, err := o.RefreshStatus(ctx, p.Contract)
	if err != nil {
		return fail(StepRefresh, err)
	}
	p.Status = status
	p.done(StepRefresh)

	newLogger.WithFields(logger.Fields{
		"stage":   status.Stage,
		"mint_tx": p.MintTx(),
	}).Info("settlement finished")
	return p, nil
}

// Record returns the stored settlement record of a consult.
func (o *Orchestrator) Record(consultID string) (*state.EscrowRecord, error) {
	if o.statedb == nil || consultID == "" {
		return nil, state.ErrEscrowNotFound
	}
	rec, ok, err := o.statedb.GetEscrowByConsult(consultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, state.ErrEscrowNotFound
	}
	return rec, nil
}

// Records lists the stored escrows last seen at stage.
func (o *Orchestrator) Records(stage escrowman.Stage) ([]*state.EscrowRecord, error) {
	if o.statedb == nil {
		return []*state.EscrowRecord{}, nil
	}
	return o.statedb.GetEscrowsByStage(stage)
}

// resume fills the resume points req leaves open from the stored record of
// its contract, or of its consult when no contract is given.
func (o *Orchestrator) resume(req SettleRequest, newLogger *logger.Entry) SettleRequest {
	if o.statedb == nil {
		return req
	}

	var (
		rec *state.EscrowRecord
		ok  bool
		err error
	)
	switch {
	case req.Contract != nil:
		rec, ok, err = o.statedb.GetEscrow(*req.Contract)
	case req.ConsultID != "":
		rec, ok, err = o.statedb.GetEscrowByConsult(req.ConsultID)
	default:
		return req
	}
	if err != nil {
		newLogger.Warnf("failed to read settlement record: %v", err)
		return req
	}
	if !ok {
		return req
	}

	contract := rec.ContractAddress
	req.Contract = &contract
	if !req.AmountUSDC.IsPositive() {
		req.AmountUSDC = common.FromUSDCUnits(rec.Amount)
	}
	if req.BurnTxHash == nil && rec.BurnTxHash != (ethcommon.Hash{}) {
		burnTxHash := rec.BurnTxHash
		req.BurnTxHash = &burnTxHash
	}
	newLogger.WithFields(logger.Fields{
		"contract": contract.Hex(),
		"burn_tx":  rec.BurnTxHash.Hex(),
	}).Info("resuming settlement from stored record")
	return req
}

func (o *Orchestrator) refreshQuietly(ctx context.Context, contract ethcommon.Address) {
	if o.statedb == nil {
		return
	}
	if _, err := o.RefreshStatus(ctx, contract); err != nil {
		logger.WithField("contract", contract.Hex()).Warnf("failed to refresh escrow status: %v", err)
	}
}

// cache applies fn to the state db. Escrows this service did not deploy are
// not tracked and are skipped.
func (o *Orchestrator) cache(contract ethcommon.Address, fn func(db *state.StateDB) error) {
	if o.statedb == nil {
		return
	}
	if err := fn(o.statedb); err != nil && !errors.Is(err, state.ErrEscrowNotFound) {
		logger.WithField("contract", contract.Hex()).Errorf("failed to update settlement record: %v", err)
	}
}
