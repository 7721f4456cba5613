package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS charities (
	key         TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	category    TEXT NOT NULL,
	city        TEXT NOT NULL,
	state       TEXT NOT NULL,
	country     TEXT NOT NULL,
	is_local    INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_charities_created ON charities(created_at);
`

// SQLiteStore persists profiles as JSON documents and the directory as rows.
// The pool is capped at one connection so transactions never interleave.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewSQLiteStore(ctx context.Context, path string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("sqlite store ready")
	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := loadProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID string, fn ports.ProfileUpdate) (*domain.UserProfile, error) {
	var out *domain.UserProfile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := loadProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile(userID)
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := s.saveProfile(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *SQLiteStore) FindCharity(ctx context.Context, key string) (*domain.CharityRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+charityColumns+` FROM charities WHERE key = ?`, key)
	c, err := scanCharity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get charity %s: %w", key, err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCharities(ctx context.Context) ([]domain.CharityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+charityColumns+` FROM charities ORDER BY created_at, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list charities: %w", err)
	}
	defer rows.Close()

	out := []domain.CharityRecord{}
	for rows.Next() {
		c, err := scanCharity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan charity: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CommitInterest(ctx context.Context, userID, key string, fn ports.InterestCommit) (*domain.CharityRecord, *domain.UserProfile, error) {
	var (
		rec     *domain.CharityRecord
		profile *domain.UserProfile
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := loadProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile(userID)
		}

		existing, err := scanCharity(tx.QueryRowContext(ctx, `SELECT `+charityColumns+` FROM charities WHERE key = ?`, key))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			existing = nil
		case err != nil:
			return fmt.Errorf("failed to get charity %s: %w", key, err)
		}

		r, err := fn(p, existing)
		if err != nil {
			return err
		}
		if existing == nil && r != nil {
			r.Key = key
			if err := insertCharity(ctx, tx, r); err != nil {
				return err
			}
		}
		if err := s.saveProfile(ctx, tx, p); err != nil {
			return err
		}
		rec, profile = r, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, profile, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) saveProfile(ctx context.Context, tx *sql.Tx, p *domain.UserProfile) error {
	p.Version++
	p.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, data, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, version = excluded.version, updated_at = excluded.updated_at`,
		p.UserID, string(data), p.Version, p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.UserID, err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadProfile returns nil, nil when the user has no profile yet.
func loadProfile(ctx context.Context, q queryRower, userID string) (*domain.UserProfile, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	p := domain.NewUserProfile(userID)
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	if p.Balances == nil {
		p.Balances = map[string]domain.Balance{}
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p, nil
}

const charityColumns = `key, id, name, description, category, city, state, country, is_local, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharity(row rowScanner) (*domain.CharityRecord, error) {
	var (
		c        domain.CharityRecord
		category string
		isLocal  int
		created  string
	)
	if err := row.Scan(&c.Key, &c.ID, &c.Name, &c.Description, &category,
		&c.Location.City, &c.Location.State, &c.Location.Country, &isLocal, &created); err != nil {
		return nil, err
	}
	c.Category = domain.Category(category)
	c.Location.IsLocal = isLocal != 0
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		c.CreatedAt = t
	}
	return &c, nil
}

func insertCharity(ctx context.Context, tx *sql.Tx, c *domain.CharityRecord) error {
	isLocal := 0
	if c.Location.IsLocal {
		isLocal = 1
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO charities (`+charityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Key, c.ID, c.Name, c.Description, string(c.Category),
		c.Location.City, c.Location.State, c.Location.Country, isLocal,
		c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert charity %s: %w", c.Key, err)
	}
	return nil
}
