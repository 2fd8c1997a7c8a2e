package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// Postgres error codes consulted when mapping constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Ensure Store satisfies the storage contract at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users, groups, and messages.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and runs migrations.
func NewStore(ctx context.Context, databaseURL string, opts storage.Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx, opts); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context, opts storage.Options) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_senior BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creator_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			group_id TEXT NOT NULL REFERENCES groups(id),
			sender_id TEXT NOT NULL REFERENCES users(id),
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS messages_group_ts_idx ON messages (group_id, ts);`,
	}
	if opts.UniqueGroupNames {
		stmts = append(stmts,
			`CREATE UNIQUE INDEX IF NOT EXISTS groups_name_unique_idx ON groups (name);`)
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row. The unique constraint on username is the
// sole source of duplicate detection; there is no check-then-write.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, username, email, password_hash, is_senior)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;`
	user.ID = user.Username
	err := s.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsSenior,
	).Scan(&user.CreatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_senior, created_at
		FROM users WHERE username = $1;`
	var user models.User
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsSenior, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// CreateGroup inserts a group with a generated ID and server-side timestamp.
func (s *Store) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	const query = `
		INSERT INTO groups (id, name, description, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;`
	group.ID = uuid.NewString()
	err := s.pool.QueryRow(ctx, query,
		group.ID, group.Name, group.Description, group.CreatorID,
	).Scan(&group.CreatedAt)
	if err != nil {
		switch {
		case isPgCode(err, pgUniqueViolation):
			return models.Group{}, storage.ErrAlreadyExists
		case isPgCode(err, pgForeignKeyViolation):
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return group, nil
}

// ListGroups returns groups in insertion order with offset/limit applied.
func (s *Store) ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error) {
	const query = `
		SELECT id, name, description, creator_id, created_at
		FROM groups ORDER BY created_at, id OFFSET $1 LIMIT $2;`
	rows, err := s.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindGroup fetches a group by ID.
func (s *Store) FindGroup(ctx context.Context, id string) (models.Group, error) {
	const query = `
		SELECT id, name, description, creator_id, created_at
		FROM groups WHERE id = $1;`
	var g models.Group
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("find group: %w", err)
	}
	return g, nil
}

// CreateMessage inserts a message with a generated ID and server timestamp.
// The foreign key on group_id rejects messages for nonexistent groups.
func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	const query = `
		INSERT INTO messages (id, content, group_id, sender_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ts;`
	msg.ID = uuid.NewString()
	err := s.pool.QueryRow(ctx, query,
		msg.ID, msg.Content, msg.GroupID, msg.SenderID,
	).Scan(&msg.Timestamp)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the group's messages ordered ascending by timestamp.
func (s *Store) ListMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	if _, err := s.FindGroup(ctx, groupID); err != nil {
		return nil, err
	}

	const query = `
		SELECT id, content, group_id, sender_id, ts
		FROM messages WHERE group_id = $1 ORDER BY ts, id;`
	rows, err := s.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.GroupID, &m.SenderID, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
