// Package repository defines the table-level data access used by handlers
// and the error values shared by every repository. Each repository method is
// a single statement against one table; failures are classified here so that
// handlers can tell a missing schema apart from ordinary errors.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrStorageNotInitialized is returned when the backing table of a query
// does not exist. Handlers surface it as the "database not initialised"
// banner.
var ErrStorageNotInitialized = errors.New("storage not initialized")

// ErrNotFound is returned when a mutation targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned on a duplicate email during registration.
var ErrEmailExists = errors.New("email already exists")

const (
	mysqlNoSuchTable  = 1146
	mysqlDuplicateKey = 1062
)

// IsMissingTable reports whether err means that the queried table is absent.
// Besides the MySQL error number it accepts the codes and messages emitted by
// PostgreSQL and PostgREST backends.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlNoSuchTable {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"schema cache", "42p01", "pgrst106", "does not exist", "doesn't exist", "not found"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateKey
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// storageError remaps a missing-table failure onto ErrStorageNotInitialized
// and wraps everything else with the failing operation.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsMissingTable(err) {
		return fmt.Errorf("%s: %w", op, ErrStorageNotInitialized)
	}
	return fmt.Errorf("%s: %w", op, err)
}
