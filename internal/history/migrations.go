package history

// migrations is the ordered list of SQL migration statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		community_id TEXT,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_user ON exchanges(user_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_community ON exchanges(community_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		community_id TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		last_active DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS communities (
		community_id TEXT PRIMARY KEY,
		message_count INTEGER NOT NULL DEFAULT 0,
		last_active DATETIME
	)`,
}
