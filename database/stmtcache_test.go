package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCache(t *testing.T) {
	db, err := OpenSqlite("")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)

	sc := NewStmtCache(db)
	defer sc.Clear()

	query := `INSERT INTO kv (k, v) VALUES (?, ?)`
	stmt1, err := sc.Prepare(query)
	require.NoError(t, err)
	stmt2 := sc.MustPrepare(query)
	assert.Same(t, stmt1, stmt2)

	_, err = stmt1.Exec("a", "1")
	require.NoError(t, err)

	var v string
	require.NoError(t, sc.MustPrepare(`SELECT v FROM kv WHERE k = ?`).QueryRow("a").Scan(&v))
	assert.Equal(t, "1", v)

	_, err = sc.Prepare(`SELECT * FROM missing`)
	assert.Error(t, err)

	assert.Panics(t, func() { sc.MustPrepare(`SELECT * FROM missing`) })
}
