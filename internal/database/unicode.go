package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	modernc "modernc.org/sqlite"
)

// sqlite3Unicode is the mattn driver with lower() replaced by a Unicode
// aware version. SQLite's built-in lower() only folds ASCII.
const sqlite3Unicode = "sqlite3_unicode"

func init() {
	sql.Register(sqlite3Unicode, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})

	modernc.MustRegisterDeterministicScalarFunction("lower", 1,
		func(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return strings.ToLower(fmt.Sprint(v)), nil
			}
		})
}

// sqlDriverName maps a configured driver to the name registered with
// database/sql.
func sqlDriverName(driver string) string {
	if driver == "sqlite3" {
		return sqlite3Unicode
	}
	return driver
}
