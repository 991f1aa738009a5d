package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // pure Go driver

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	birth_date TEXT NOT NULL,
	answers    TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS accounts (
	number          TEXT PRIMARY KEY,
	customer_id     TEXT NOT NULL REFERENCES customers(id),
	secret          TEXT NOT NULL,
	kind            TEXT NOT NULL,
	balance         INTEGER NOT NULL,
	overdraft_limit INTEGER NOT NULL,
	failed_attempts INTEGER NOT NULL,
	status          TEXT NOT NULL,
	transactions    TEXT NOT NULL DEFAULT '[]',
	version         INTEGER NOT NULL
);
`

const upsertAccount = `
INSERT INTO accounts (number, customer_id, secret, kind, balance, overdraft_limit, failed_attempts, status, transactions, version)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(number) DO UPDATE SET
	customer_id     = excluded.customer_id,
	secret          = excluded.secret,
	kind            = excluded.kind,
	balance         = excluded.balance,
	overdraft_limit = excluded.overdraft_limit,
	failed_attempts = excluded.failed_attempts,
	status          = excluded.status,
	transactions    = excluded.transactions,
	version         = excluded.version
`

const upsertCustomer = `
INSERT INTO customers (id, full_name, birth_date, answers)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	full_name  = excluded.full_name,
	birth_date = excluded.birth_date,
	answers    = excluded.answers
`

// Store is a goTeller.Storage backed by a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns every stored account and customer.
func (s *Store) Load(ctx context.Context) ([]account.Account, []account.Customer, error) {
	customers, err := s.loadCustomers(ctx)
	if err != nil {
		return nil, nil, err
	}
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, customers, nil
}

func (s *Store) loadCustomers(ctx context.Context) ([]account.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, full_name, birth_date, answers FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []account.Customer
	for rows.Next() {
		var (
			r       store.CustomerRecord
			answers string
		)
		if err := rows.Scan(&r.ID, &r.FullName, &r.BirthDate, &answers); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("%w: customer %s answers: %v", store.ErrInvalidRecord, r.ID, err)
		}
		c, err := r.Customer()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadAccounts(ctx context.Context) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, customer_id, secret, kind, balance, overdraft_limit, failed_attempts, status, transactions, version
		FROM accounts ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []account.Account
	for rows.Next() {
		var (
			r   store.AccountRecord
			txs string
		)
		if err := rows.Scan(&r.Number, &r.CustomerID, &r.Secret, &r.Kind, &r.Balance,
			&r.OverdraftLimit, &r.FailedAttempts, &r.Status, &txs, &r.Version); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if err := json.Unmarshal([]byte(txs), &r.Transactions); err != nil {
			return nil, fmt.Errorf("%w: account %s transactions: %v", store.ErrInvalidRecord, r.Number, err)
		}
		a, err := r.Account()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAccount upserts a inside a transaction.
func (s *Store) SaveAccount(ctx context.Context, a account.Account) error {
	r := store.FromAccount(a)
	txs, err := json.Marshal(r.Transactions)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if r.Transactions == nil {
		txs = []byte("[]")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertAccount,
			r.Number, r.CustomerID, r.Secret, r.Kind, r.Balance,
			r.OverdraftLimit, r.FailedAttempts, r.Status, string(txs), r.Version)
		if err != nil {
			return fmt.Errorf("save account %s: %w", r.Number, err)
		}
		return nil
	})
}

// SaveCustomer upserts c inside a transaction.
func (s *Store) SaveCustomer(ctx context.Context, c account.Customer) error {
	r := store.FromCustomer(c)
	answers := []byte("{}")
	if len(r.Answers) > 0 {
		var err error
		answers, err = json.Marshal(r.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertCustomer, r.ID, r.FullName, r.BirthDate, string(answers))
		if err != nil {
			return fmt.Errorf("save customer %s: %w", r.ID, err)
		}
		return nil
	})
}

// DeleteAccount removes the account row for number. Unknown numbers are a
// no-op.
func (s *Store) DeleteAccount(ctx context.Context, number string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE number = ?`, number); err != nil {
			return fmt.Errorf("delete account %s: %w", number, err)
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
