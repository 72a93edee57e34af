package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store and Stats using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID, prompt, response, communityID string) error {
	var community *string
	if communityID != "" {
		community = &communityID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (user_id, community_id, prompt, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, community, prompt, response, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) Recent(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, response, community_id, created_at
		 FROM exchanges WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		var community sql.NullString
		if err := rows.Scan(&ex.Prompt, &ex.Response, &community, &ex.Timestamp); err != nil {
			return nil, err
		}
		if community.Valid {
			ex.CommunityID = community.String
		}
		exchanges = append(exchanges, ex)
	}

	return exchanges, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) TouchUser(ctx context.Context, userID, communityID string) error {
	var community *string
	if communityID != "" {
		community = &communityID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, community_id, message_count, last_active)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			message_count = message_count + 1,
			last_active = excluded.last_active`,
		userID, community, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) TouchCommunity(ctx context.Context, communityID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO communities (community_id, message_count, last_active)
		 VALUES (?, 1, ?)
		 ON CONFLICT(community_id) DO UPDATE SET
			message_count = message_count + 1,
			last_active = excluded.last_active`,
		communityID, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) Global(ctx context.Context) (GlobalStats, error) {
	var stats GlobalStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&stats.Conversations); err != nil {
		return stats, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return stats, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM communities`).Scan(&stats.Communities); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *SQLiteStore) User(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	var lastActive sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT message_count, last_active FROM users WHERE user_id = ?`,
		userID,
	).Scan(&stats.MessageCount, &lastActive)
	if err == sql.ErrNoRows {
		return UserStats{}, nil
	}
	if err != nil {
		return stats, err
	}
	if lastActive.Valid {
		stats.LastActive = lastActive.Time
	}
	return stats, nil
}

func (s *SQLiteStore) Community(ctx context.Context, communityID string) (CommunityStats, error) {
	var stats CommunityStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id) FROM exchanges WHERE community_id = ?`,
		communityID,
	).Scan(&stats.MessageCount, &stats.ActiveUsers)
	return stats, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
