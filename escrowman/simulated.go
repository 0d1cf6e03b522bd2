package escrowman

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SimulatedNetwork is an in-memory destination chain holding one settlement
// token and any number of escrows. It follows the escrow's observable state
// machine and is used by tests across packages.
type SimulatedNetwork struct {
	ID    *big.Int
	Token *SimulatedToken

	mu       sync.Mutex
	nonce    uint64
	txs      int
	deployed map[ethcommon.Hash]ethcommon.Address
	reverted map[ethcommon.Hash]string
	escrows  map[ethcommon.Address]*SimulatedEscrow
}

func NewSimulatedNetwork(chainID *big.Int) *SimulatedNetwork {
	net := &SimulatedNetwork{
		ID:       common.BigIntClone(chainID),
		deployed: make(map[ethcommon.Hash]ethcommon.Address),
		reverted: make(map[ethcommon.Hash]string),
		escrows:  make(map[ethcommon.Address]*SimulatedEscrow),
	}
	net.Token = &SimulatedToken{
		net:        net,
		balances:   make(map[ethcommon.Address]*big.Int),
		allowances: make(map[[2]ethcommon.Address]*big.Int),
	}
	return net
}

// NewTx returns a unique placeholder tx and counts it as a chain write.
func (n *SimulatedNetwork) NewTx() *types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.newTxLocked()
}

func (n *SimulatedNetwork) newTxLocked() *types.Transaction {
	n.nonce++
	n.txs++
	return types.NewTx(&types.LegacyTx{Nonce: n.nonce, GasPrice: big.NewInt(1), Gas: 21000})
}

// Txs counts every transaction sent to the network so far.
func (n *SimulatedNetwork) Txs() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.txs
}

// MarkReverted makes WaitMined report tx as reverted with reason.
func (n *SimulatedNetwork) MarkReverted(tx *types.Transaction, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reverted[tx.Hash()] = reason
}

func (n *SimulatedNetwork) ChainID() *big.Int {
	return common.BigIntClone(n.ID)
}

func (n *SimulatedNetwork) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.Lock()
	reason, reverted := n.reverted[tx.Hash()]
	n.mu.Unlock()

	receipt := &types.Receipt{TxHash: tx.Hash(), BlockNumber: big.NewInt(int64(tx.Nonce())), Status: types.ReceiptStatusSuccessful}
	if reverted {
		receipt.Status = types.ReceiptStatusFailed
		return receipt, &common.ChainRevertError{TxHash: tx.Hash(), Reason: reason}
	}
	return receipt, nil
}

func (n *SimulatedNetwork) WaitDeployed(ctx context.Context, tx *types.Transaction) (ethcommon.Address, error) {
	if _, err := n.WaitMined(ctx, tx); err != nil {
		return ethcommon.Address{}, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	addr, ok := n.deployed[tx.Hash()]
	if !ok {
		return ethcommon.Address{}, bind.ErrNoCodeAfterDeploy
	}
	return addr, nil
}

// Deploy has the DeployFunc signature.
func (n *SimulatedNetwork) Deploy(
	auth *bind.TransactOpts,
	bytecode []byte,
	depositor, beneficiary ethcommon.Address,
	amount *big.Int,
) (ethcommon.Address, *types.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tx := n.newTxLocked()
	addr := crypto.CreateAddress(auth.From, tx.Nonce())
	n.escrows[addr] = &SimulatedEscrow{
		net:         n,
		addr:        addr,
		depositor:   depositor,
		beneficiary: beneficiary,
		amount:      new(big.Int).Set(amount),
	}
	n.deployed[tx.Hash()] = addr
	return addr, tx, nil
}

// EscrowAt has the EscrowFactory signature.
func (n *SimulatedNetwork) EscrowAt(addr ethcommon.Address) (EscrowContract, error) {
	escrow, ok := n.Escrow(addr)
	if !ok {
		return nil, bind.ErrNoCode
	}
	return escrow, nil
}

func (n *SimulatedNetwork) Escrow(addr ethcommon.Address) (*SimulatedEscrow, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	escrow, ok := n.escrows[addr]
	return escrow, ok
}

// SimulatedToken is an ERC20 ledger. ApproveCalls counts approve txs.
type SimulatedToken struct {
	net *SimulatedNetwork

	mu           sync.Mutex
	balances     map[ethcommon.Address]*big.Int
	allowances   map[[2]ethcommon.Address]*big.Int
	ApproveCalls int

	// StrictApprove rejects changing a non-zero allowance to another
	// non-zero value, like USDT.
	StrictApprove bool
}

func (t *SimulatedToken) Mint(to ethcommon.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
}

func (t *SimulatedToken) SetAllowance(owner, spender ethcommon.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[[2]ethcommon.Address{owner, spender}] = new(big.Int).Set(amount)
}

func (t *SimulatedToken) BalanceOf(opts *bind.CallOpts, account ethcommon.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceLocked(account), nil
}

func (t *SimulatedToken) Allowance(opts *bind.CallOpts, owner, spender ethcommon.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.allowances[[2]ethcommon.Address{owner, spender}]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

func (t *SimulatedToken) Approve(opts *bind.TransactOpts, spender ethcommon.Address, value *big.Int) (*types.Transaction, error) {
	t.mu.Lock()
	key := [2]ethcommon.Address{opts.From, spender}
	if current, ok := t.allowances[key]; t.StrictApprove && ok && current.Sign() > 0 && value.Sign() > 0 {
		t.mu.Unlock()
		return nil, errors.New("execution reverted: approve from non-zero to non-zero allowance")
	}
	t.allowances[key] = new(big.Int).Set(value)
	t.ApproveCalls++
	t.mu.Unlock()
	return t.net.NewTx(), nil
}

func (t *SimulatedToken) Approvals() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ApproveCalls
}

func (t *SimulatedToken) transferFrom(spender, from, to ethcommon.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := [2]ethcommon.Address{from, spender}
	allowance, ok := t.allowances[key]
	if !ok || allowance.Cmp(amount) < 0 {
		return errors.New("ERC20: insufficient allowance")
	}
	if err := t.moveLocked(from, to, amount); err != nil {
		return err
	}
	t.allowances[key] = new(big.Int).Sub(allowance, amount)
	return nil
}

// BurnFrom destroys amount of from's tokens on behalf of spender, the way a
// CCTP token messenger does.
func (t *SimulatedToken) BurnFrom(spender, from ethcommon.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := [2]ethcommon.Address{from, spender}
	allowance, ok := t.allowances[key]
	if !ok || allowance.Cmp(amount) < 0 {
		return errors.New("ERC20: insufficient allowance")
	}
	balance := t.balanceLocked(from)
	if balance.Cmp(amount) < 0 {
		return errors.New("ERC20: burn amount exceeds balance")
	}
	t.balances[from] = balance.Sub(balance, amount)
	t.allowances[key] = new(big.Int).Sub(allowance, amount)
	return nil
}

func (t *SimulatedToken) transfer(from, to ethcommon.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.moveLocked(from, to, amount)
}

func (t *SimulatedToken) moveLocked(from, to ethcommon.Address, amount *big.Int) error {
	if t.balanceLocked(from).Cmp(amount) < 0 {
		return errors.New("ERC20: transfer amount exceeds balance")
	}
	t.balances[from] = new(big.Int).Sub(t.balances[from], amount)
	t.credit(to, amount)
	return nil
}

func (t *SimulatedToken) credit(to ethcommon.Address, amount *big.Int) {
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
}

func (t *SimulatedToken) balanceLocked(account ethcommon.Address) *big.Int {
	if v, ok := t.balances[account]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// SimulatedEscrow follows the escrow's observable rules: OPEN until its
// token balance covers amount, then FUNDED; both release (refund) approvals
// pay out to the beneficiary (depositor).
type SimulatedEscrow struct {
	net  *SimulatedNetwork
	addr ethcommon.Address

	mu          sync.Mutex
	depositor   ethcommon.Address
	beneficiary ethcommon.Address
	amount      *big.Int
	stage       uint8
	approvals   Approvals
	rawOverride *uint8
}

// SetRawStage forces Stage() to report v.
func (e *SimulatedEscrow) SetRawStage(v uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rawOverride = &v
}

func (e *SimulatedEscrow) Stage(opts *bind.CallOpts) (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rawOverride != nil {
		return *e.rawOverride, nil
	}
	e.syncFundedLocked()
	return e.stage, nil
}

func (e *SimulatedEscrow) Depositor(opts *bind.CallOpts) (ethcommon.Address, error) {
	return e.depositor, nil
}

func (e *SimulatedEscrow) Beneficiary(opts *bind.CallOpts) (ethcommon.Address, error) {
	return e.beneficiary, nil
}

func (e *SimulatedEscrow) Amount(opts *bind.CallOpts) (*big.Int, error) {
	return new(big.Int).Set(e.amount), nil
}

func (e *SimulatedEscrow) DepositorReleaseOk(opts *bind.CallOpts) (bool, error) {
	return e.has(DepositorRelease), nil
}

func (e *SimulatedEscrow) BeneficiaryReleaseOk(opts *bind.CallOpts) (bool, error) {
	return e.has(BeneficiaryRelease), nil
}

func (e *SimulatedEscrow) DepositorRefundOk(opts *bind.CallOpts) (bool, error) {
	return e.has(DepositorRefund), nil
}

func (e *SimulatedEscrow) BeneficiaryRefundOk(opts *bind.CallOpts) (bool, error) {
	return e.has(BeneficiaryRefund), nil
}

func (e *SimulatedEscrow) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stage != uint8(StageOpen) {
		return nil, errors.New("execution reverted: not open")
	}
	if err := e.net.Token.transferFrom(e.addr, opts.From, e.addr, e.amount); err != nil {
		return nil, errors.New("execution reverted: " + err.Error())
	}
	e.syncFundedLocked()
	return e.net.NewTx(), nil
}

func (e *SimulatedEscrow) ApproveRelease(opts *bind.TransactOpts) (*types.Transaction, error) {
	return e.approve(opts.From, DepositorRelease, BeneficiaryRelease, StageReleased, e.beneficiary)
}

func (e *SimulatedEscrow) ApproveRefund(opts *bind.TransactOpts) (*types.Transaction, error) {
	return e.approve(opts.From, DepositorRefund, BeneficiaryRefund, StageRefunded, e.depositor)
}

func (e *SimulatedEscrow) approve(
	from ethcommon.Address,
	depositorFlag, beneficiaryFlag Approvals,
	final Stage,
	payee ethcommon.Address,
) (*types.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncFundedLocked()
	if e.stage != uint8(StageFunded) {
		return nil, errors.New("execution reverted: not funded")
	}
	switch from {
	case e.depositor:
		e.approvals |= depositorFlag
	case e.beneficiary:
		e.approvals |= beneficiaryFlag
	default:
		return nil, errors.New("execution reverted: not a party")
	}

	if e.approvals.Has(depositorFlag | beneficiaryFlag) {
		if err := e.net.Token.transfer(e.addr, payee, e.amount); err != nil {
			return nil, errors.New("execution reverted: " + err.Error())
		}
		e.stage = uint8(final)
	}
	return e.net.NewTx(), nil
}

func (e *SimulatedEscrow) has(flag Approvals) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.approvals.Has(flag)
}

func (e *SimulatedEscrow) syncFundedLocked() {
	if e.stage != uint8(StageOpen) {
		return
	}
	balance, _ := e.net.Token.BalanceOf(nil, e.addr)
	if balance.Cmp(e.amount) >= 0 {
		e.stage = uint8(StageFunded)
	}
}
