package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dyike/QuorumGo/internal/models"
	"github.com/dyike/QuorumGo/internal/storage/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store persists trading signals and their debate sessions. Full artifacts
// are kept as JSON payloads next to the queryable columns.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		signal TEXT NOT NULL,
		confidence REAL NOT NULL,
		consensus_level REAL NOT NULL,
		method TEXT NOT NULL,
		session_id TEXT,
		generated_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol, generated_at);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		terminal_reason TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_symbol ON sessions(symbol, started_at);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveSignal persists one trading signal with its full JSON payload.
func (s *Store) SaveSignal(ctx context.Context, sig *models.TradingSignal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	sessionID := ""
	if sig.Session != nil {
		sessionID = sig.Session.SessionID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals
		(symbol, signal, confidence, consensus_level, method, session_id, generated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sig.Symbol, string(sig.Signal), sig.Confidence, sig.ConsensusLevel,
		string(sig.Methodology), sessionID, sig.GeneratedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// SaveSession persists a debate session, replacing any prior row with the
// same session ID.
func (s *Store) SaveSession(ctx context.Context, session *models.DebateSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
		(session_id, symbol, terminal_reason, rounds, started_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.Symbol, string(session.TerminalReason),
		session.TotalRounds(), session.StartedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession loads a debate session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.DebateSession, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", sessionID, err)
	}

	var session models.DebateSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &session, nil
}

// SignalRecord is the queryable view of a stored signal.
type SignalRecord struct {
	ID             int64
	Symbol         string
	Signal         models.Signal
	Confidence     float64
	ConsensusLevel float64
	Method         models.ConsensusMethod
	SessionID      string
	GeneratedAt    time.Time
}

// ListSignals returns the most recent signals for a symbol, newest first.
// An empty symbol lists across all symbols.
func (s *Store) ListSignals(ctx context.Context, symbol string, limit int) ([]*SignalRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, symbol, signal, confidence, consensus_level, method, session_id, generated_at
		FROM signals`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY generated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var records []*SignalRecord
	for rows.Next() {
		var r SignalRecord
		var sig, method string
		if err := rows.Scan(&r.ID, &r.Symbol, &sig, &r.Confidence, &r.ConsensusLevel, &method, &r.SessionID, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		r.Signal = models.Signal(sig)
		r.Method = models.ConsensusMethod(method)
		records = append(records, &r)
	}
	return records, rows.Err()
}

// GetSignal loads the full signal payload by row ID.
func (s *Store) GetSignal(ctx context.Context, id int64) (*models.TradingSignal, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM signals WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query signal %d: %w", id, err)
	}

	var sig models.TradingSignal
	if err := json.Unmarshal([]byte(payload), &sig); err != nil {
		return nil, fmt.Errorf("unmarshal signal %d: %w", id, err)
	}
	return &sig, nil
}
