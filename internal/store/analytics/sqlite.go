package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	visitor TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_topics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	visitor TEXT NOT NULL DEFAULT '',
	topic TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_topics_topic ON chat_topics(topic);
`

// retention bounds how long rows are kept.
const retention = 365 * 24 * time.Hour

// SQLiteRecorder persists counters in a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and prunes rows older than a year.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create analytics schema: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With("component", "analytics"), now: func() time.Time { return time.Now().UTC() }}
	if err := r.prune(ctx); err != nil {
		r.logger.Warn("analytics cleanup failed", "error", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) prune(ctx context.Context) error {
	cutoff := r.now().Add(-retention)
	var removed int64
	for _, table := range []string{"chat_sessions", "chat_topics"} {
		res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE created_at < ?", cutoff)
		if err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if removed > 0 {
		r.logger.Info("pruned old analytics rows", "rows", removed)
	}
	return nil
}

func (r *SQLiteRecorder) RecordSession(ctx context.Context, visitor string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_sessions (visitor, created_at) VALUES (?, ?)`, visitor, r.now())
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordTopic(ctx context.Context, visitor, topic string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_topics (visitor, topic, created_at) VALUES (?, ?, ?)`, visitor, topic, r.now())
	if err != nil {
		return fmt.Errorf("record topic: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&stats.Sessions); err != nil {
		return Stats{}, fmt.Errorf("count sessions: %w", err)
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT visitor) FROM chat_sessions WHERE visitor != ''`).Scan(&stats.UniqueVisitors); err != nil {
		return Stats{}, fmt.Errorf("count visitors: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_topics`).Scan(&stats.VisitorMessages); err != nil {
		return Stats{}, fmt.Errorf("count messages: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT topic, COUNT(*) AS n FROM chat_topics GROUP BY topic ORDER BY n DESC, topic ASC`)
	if err != nil {
		return Stats{}, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	stats.Topics = []TopicCount{}
	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return Stats{}, fmt.Errorf("scan topic: %w", err)
		}
		stats.Topics = append(stats.Topics, tc)
	}
	return stats, rows.Err()
}

// Close releases the database handle.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
