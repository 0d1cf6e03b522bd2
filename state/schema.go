package state

import "strings"

var (
	strZeroBytes32 = strings.Repeat("0", 64)
	strZeroBytes20 = strings.Repeat("0", 40)

	// off-chain cache of the escrows this service deployed. stage is only as
	// fresh as the last read from the contract.
	// mintTxHash holds either a tx hash or 'already-processed'
	escrowTable = `CREATE TABLE IF NOT EXISTS escrow (
		contractAddress CHAR(40) PRIMARY KEY NOT NULL,
		consultId VARCHAR(64) UNIQUE,
		deployTxHash CHAR(64) NOT NULL,
		depositor CHAR(40) NOT NULL,
		beneficiary CHAR(40) NOT NULL,
		amount BIGINT UNSIGNED NOT NULL,
		stage VARCHAR(10) NOT NULL,
		burnTxHash CHAR(64) NOT NULL DEFAULT '',
		mintTxHash VARCHAR(66) NOT NULL DEFAULT '',
		updatedAt INTEGER NOT NULL,
		CONSTRAINT chk_stage CHECK (stage IN ('OPEN', 'FUNDED', 'RELEASED', 'REFUNDED', 'UNKNOWN')),
		CONSTRAINT chk_amount CHECK (amount > 0),
		CONSTRAINT chk_contractAddress CHECK (contractAddress != '` + strZeroBytes20 + `'),
		CONSTRAINT chk_deployTxHash CHECK (deployTxHash != '` + strZeroBytes32 + `'),
		CONSTRAINT chk_depositor CHECK (depositor != '` + strZeroBytes20 + `'),
		CONSTRAINT chk_beneficiary CHECK (beneficiary != '` + strZeroBytes20 + `'),
		CONSTRAINT chk_parties CHECK (depositor != beneficiary)
	);
	CREATE INDEX IF NOT EXISTS idx_escrow_stage ON escrow (stage);`

	escrowColumns = ` contractAddress, consultId, deployTxHash, depositor, beneficiary, amount, stage, burnTxHash, mintTxHash, updatedAt `
)
