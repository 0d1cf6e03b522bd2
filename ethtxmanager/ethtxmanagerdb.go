package ethtxmanager

import (
	"database/sql"
	"errors"
	"time"

	"github.com/TEENet-io/escrow-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var ErrInvalidStatus = errors.New("invalid status")

type EthTxManagerDB struct {
	stmtCache *database.StmtCache
}

func NewEthTxManagerDB(db *sql.DB) (*EthTxManagerDB, error) {
	if _, err := db.Exec(finalizationTable); err != nil {
		return nil, err
	}

	return &EthTxManagerDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (db *EthTxManagerDB) Close() {
	db.stmtCache.Clear()
}

// InsertPending records a submission attempt. A reverted record for the same
// message is reset to pending; the burn tx hash is only overwritten when a
// new one is known.
func (db *EthTxManagerDB) InsertPending(f *Finalization) error {
	query := `INSERT INTO finalization (messageHash, nonce, sourceDomain, burnTxHash, mintTxHash, status, reason, updatedAt)
		VALUES (?, ?, ?, ?, '', 'pending', '', ?)
		ON CONFLICT(messageHash) DO UPDATE SET
			burnTxHash = CASE WHEN excluded.burnTxHash != '' THEN excluded.burnTxHash ELSE finalization.burnTxHash END,
			mintTxHash = '',
			status = 'pending',
			reason = '',
			updatedAt = excluded.updatedAt`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	f.Status = Pending
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now()
	}
	sqlF := &sqlFinalization{}
	sqlF.encode(f)

	_, err = stmt.Exec(
		sqlF.MessageHash,
		sqlF.Nonce,
		sqlF.SourceDomain,
		sqlF.BurnTxHash,
		sqlF.UpdatedAt,
	)
	return err
}

// SetMintTx stores the hash of the sent receiveMessage tx before it is mined.
func (db *EthTxManagerDB) SetMintTx(messageHash, mintTxHash ethcommon.Hash) error {
	query := `UPDATE finalization SET mintTxHash = ?, updatedAt = ? WHERE messageHash = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(hashToStr(mintTxHash), time.Now().Unix(), messageHash.String()[2:])
	return err
}

func (db *EthTxManagerDB) UpdateStatus(messageHash ethcommon.Hash, status FinalizationStatus, reason string) error {
	switch status {
	case Pending, Minted, AlreadyProcessedState, Reverted:
	default:
		return ErrInvalidStatus
	}

	query := `UPDATE finalization SET status = ?, reason = ?, updatedAt = ? WHERE messageHash = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(string(status), reason, time.Now().Unix(), messageHash.String()[2:])
	return err
}

func (db *EthTxManagerDB) GetFinalization(messageHash ethcommon.Hash) (*Finalization, bool, error) {
	query := `SELECT messageHash, nonce, sourceDomain, burnTxHash, mintTxHash, status, reason, updatedAt
		FROM finalization WHERE messageHash = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, false, err
	}

	var sqlF sqlFinalization
	if err := stmt.QueryRow(messageHash.String()[2:]).Scan(
		&sqlF.MessageHash,
		&sqlF.Nonce,
		&sqlF.SourceDomain,
		&sqlF.BurnTxHash,
		&sqlF.MintTxHash,
		&sqlF.Status,
		&sqlF.Reason,
		&sqlF.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	return sqlF.decode(), true, nil
}

func (db *EthTxManagerDB) GetFinalizationsByStatus(status FinalizationStatus) ([]*Finalization, error) {
	query := `SELECT messageHash, nonce, sourceDomain, burnTxHash, mintTxHash, status, reason, updatedAt
		FROM finalization WHERE status = ?`
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fs := []*Finalization{}
	for rows.Next() {
		var sqlF sqlFinalization
		if err := rows.Scan(
			&sqlF.MessageHash,
			&sqlF.Nonce,
			&sqlF.SourceDomain,
			&sqlF.BurnTxHash,
			&sqlF.MintTxHash,
			&sqlF.Status,
			&sqlF.Reason,
			&sqlF.UpdatedAt,
		); err != nil {
			return nil, err
		}
		fs = append(fs, sqlF.decode())
	}

	return fs, rows.Err()
}
