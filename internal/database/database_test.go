package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/colocetudiant/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "coloc", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "colocetudiant"})
	assert.True(t, strings.HasPrefix(dsn, "coloc:pw@tcp(db:3306)/colocetudiant?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestMigrateCreatesEveryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "annonces", "messages", "tasks", "expenses"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("denied"))
	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "migrate statement 1")
}

func TestSchemaOrderingColumnsKeepMilliseconds(t *testing.T) {
	all := strings.Join(Schema, "\n")
	assert.Contains(t, all, "date_creation DATETIME(3)")
	assert.Contains(t, all, "timestamp DATETIME(3)")
	assert.Contains(t, all, "date DATETIME(3)")
}
