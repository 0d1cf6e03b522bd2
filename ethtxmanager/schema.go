package ethtxmanager

import "strings"

var (
	strZeroBytes32 = strings.Repeat("0", 64)

	// messageHash == keccak256 of the attested CCTP message
	// burnTxHash and mintTxHash are empty until known
	finalizationTable = `CREATE TABLE IF NOT EXISTS finalization (
		messageHash CHAR(64) PRIMARY KEY NOT NULL,
		nonce CHAR(64) NOT NULL,
		sourceDomain INTEGER NOT NULL,
		burnTxHash CHAR(64) NOT NULL DEFAULT '',
		mintTxHash CHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		updatedAt INTEGER NOT NULL,
		CONSTRAINT chk_messageHash CHECK (messageHash != '` + strZeroBytes32 + `'),
		CONSTRAINT chk_status CHECK (status IN ('pending', 'minted', 'already_processed', 'reverted'))
	);`
)
