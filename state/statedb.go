package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/TEENet-io/escrow-go/database"
	"github.com/TEENet-io/escrow-go/escrowman"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrEscrowNotFound = errors.New("escrow not found")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

type StateDB struct {
	stmtCache *database.StmtCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	if _, err := db.Exec(escrowTable); err != nil {
		return nil, err
	}

	return &StateDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (st *StateDB) Close() {
	st.stmtCache.Clear()
}

// InsertEscrow stores a freshly deployed escrow. Inserting a known contract
// is a no-op.
func (st *StateDB) InsertEscrow(r *EscrowRecord) error {
	if r.Amount == nil || r.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	query := `INSERT INTO escrow (` + escrowColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(contractAddress) DO NOTHING`
	stmt, err := st.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	s := &sqlEscrowRecord{}
	s.encode(r)

	_, err = stmt.Exec(
		s.ContractAddress,
		s.ConsultID,
		s.DeployTxHash,
		s.Depositor,
		s.Beneficiary,
		s.Amount,
		s.Stage,
		s.BurnTxHash,
		s.MintTx,
		s.UpdatedAt,
	)
	return err
}

func (st *StateDB) GetEscrow(contract ethcommon.Address) (*EscrowRecord, bool, error) {
	return st.getOne(`SELECT`+escrowColumns+`FROM escrow WHERE contractAddress = ?`, addrToStr(contract))
}

func (st *StateDB) GetEscrowByConsult(consultID string) (*EscrowRecord, bool, error) {
	return st.getOne(`SELECT`+escrowColumns+`FROM escrow WHERE consultId = ?`, consultID)
}

func (st *StateDB) getOne(query string, arg interface{}) (*EscrowRecord, bool, error) {
	stmt, err := st.stmtCache.Prepare(query)
	if err != nil {
		return nil, false, err
	}

	var s sqlEscrowRecord
	if err := stmt.QueryRow(arg).Scan(s.fields()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	return s.decode(), true, nil
}

func (st *StateDB) GetEscrowsByStage(stage escrowman.Stage) ([]*EscrowRecord, error) {
	query := `SELECT` + escrowColumns + `FROM escrow WHERE stage = ? ORDER BY updatedAt`
	stmt, err := st.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(stage.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*EscrowRecord{}
	for rows.Next() {
		var s sqlEscrowRecord
		if err := rows.Scan(s.fields()...); err != nil {
			return nil, err
		}
		records = append(records, s.decode())
	}

	return records, rows.Err()
}

// UpdateStage caches the stage last read from the contract.
func (st *StateDB) UpdateStage(contract ethcommon.Address, stage escrowman.Stage) error {
	return st.update(`stage = ?`, stage.String(), contract)
}

func (st *StateDB) SetBurnTx(contract ethcommon.Address, burnTxHash ethcommon.Hash) error {
	return st.update(`burnTxHash = ?`, hashToStr(burnTxHash), contract)
}

// SetMintTx records the receiveMessage tx hash or "already-processed".
func (st *StateDB) SetMintTx(contract ethcommon.Address, mintTx string) error {
	return st.update(`mintTxHash = ?`, mintTx, contract)
}

func (st *StateDB) update(set string, value interface{}, contract ethcommon.Address) error {
	query := `UPDATE escrow SET ` + set + `, updatedAt = ? WHERE contractAddress = ?`
	stmt, err := st.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	res, err := stmt.Exec(value, time.Now().Unix(), addrToStr(contract))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEscrowNotFound
	}
	return nil
}
