package recordledger

import (
	"context"
	"database/sql"
	"time"

	"lead-intake/internal/common/logger"
)

// Entry is one row of the form_submissions ledger.
type Entry struct {
	ID              string
	FileName        string
	BusinessName    string
	BusinessDomain  string
	PrimaryLanguage string
	BudgetType      string
	BudgetAmount    string
	Record          []byte
	SubmittedAt     time.Time
}

// Execer is satisfied by *sql.DB and database.PostgresClient.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type ServiceDependencies struct {
	DB     Execer
	Logger logger.Logger
}
