// Package sqlite provides a SQLite-backed storage adapter using the pure-Go
// modernc driver. Suitable for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store persists users, groups, and messages in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) a SQLite store at the given path and
// applies migrations. Foreign keys are enabled so referential checks are
// enforced by the engine.
func Open(ctx context.Context, path string, opts storage.Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	// _pragma options apply to every pooled connection, which matters for
	// foreign_keys: a plain PRAGMA statement would only cover one.
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{sqlDB: sqlDB}
	if err := s.migrate(ctx, opts); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Ping reports whether the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() {
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
}

func (s *Store) migrate(ctx context.Context, opts storage.Options) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_senior INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creator_id TEXT NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			group_id TEXT NOT NULL REFERENCES groups(id),
			sender_id TEXT NOT NULL REFERENCES users(id),
			ts INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS messages_group_ts_idx ON messages (group_id, ts);`,
	}
	if opts.UniqueGroupNames {
		stmts = append(stmts,
			`CREATE UNIQUE INDEX IF NOT EXISTS groups_name_unique_idx ON groups (name);`)
	}
	for _, stmt := range stmts {
		if _, err := s.sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func toMicros(value time.Time) int64 {
	return value.UTC().UnixMicro()
}

func fromMicros(value int64) time.Time {
	return time.UnixMicro(value).UTC()
}

// CreateUser inserts a new user row; duplicates surface through the unique
// constraint on username.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = user.Username
	user.CreatedAt = time.Now().UTC()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_senior, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		boolToInt(user.IsSenior), toMicros(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.CreatedAt = fromMicros(toMicros(user.CreatedAt))
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, is_senior, created_at
		 FROM users WHERE username = ?`, username)
	var user models.User
	var isSenior int
	var createdAt int64
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&isSenior, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	user.IsSenior = isSenior != 0
	user.CreatedAt = fromMicros(createdAt)
	return user, nil
}

// CreateGroup inserts a group with a generated ID and creation time.
func (s *Store) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	group.ID = uuid.NewString()
	group.CreatedAt = time.Now().UTC()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, group.CreatorID,
		toMicros(group.CreatedAt),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return models.Group{}, storage.ErrAlreadyExists
		case isForeignKeyViolation(err):
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("insert group: %w", err)
	}
	group.CreatedAt = fromMicros(toMicros(group.CreatedAt))
	return group, nil
}

// ListGroups returns groups in insertion order with offset/limit applied.
func (s *Store) ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, description, creator_id, created_at
		 FROM groups ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.CreatedAt = fromMicros(createdAt)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindGroup fetches a group by ID.
func (s *Store) FindGroup(ctx context.Context, id string) (models.Group, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, description, creator_id, created_at
		 FROM groups WHERE id = ?`, id)
	var g models.Group
	var createdAt int64
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("find group: %w", err)
	}
	g.CreatedAt = fromMicros(createdAt)
	return g, nil
}

// CreateMessage inserts a message with a generated ID and server timestamp.
// The foreign key on group_id rejects messages for nonexistent groups.
func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO messages (id, content, group_id, sender_id, ts)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Content, msg.GroupID, msg.SenderID, toMicros(msg.Timestamp),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	msg.Timestamp = fromMicros(toMicros(msg.Timestamp))
	return msg, nil
}

// ListMessages returns the group's messages ordered ascending by timestamp.
func (s *Store) ListMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	if _, err := s.FindGroup(ctx, groupID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, content, group_id, sender_id, ts
		 FROM messages WHERE group_id = ? ORDER BY ts, id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.Content, &m.GroupID, &m.SenderID, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = fromMicros(ts)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
