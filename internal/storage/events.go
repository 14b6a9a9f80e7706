package storage

import (
	"fmt"
	"time"
)

// Event directions.
const (
	DirectionInbound  = "in"  // host to game
	DirectionOutbound = "out" // game to host
)

// EventEntry is one logged protocol message.
type EventEntry struct {
	ID          int64
	GameID      string
	PlaySession string
	Direction   string
	Type        string
	Payload     string
	CreatedAt   time.Time
}

// LogEvent appends a protocol message to the event log.
func (s *Store) LogEvent(e EventEntry) (int64, error) {
	if e.Direction == "" {
		e.Direction = DirectionOutbound
	}
	result, err := s.db.Exec(
		"INSERT INTO events (game_id, play_session, direction, type, payload) VALUES (?, ?, ?, ?, ?)",
		e.GameID, e.PlaySession, e.Direction, e.Type, e.Payload,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot log event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentEvents returns the latest events, oldest first. An empty gameID
// selects every game.
func (s *Store) RecentEvents(gameID string, limit int) ([]EventEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, play_session, direction, type, payload, created_at FROM (
			SELECT * FROM events
			WHERE ? = '' OR game_id = ?
			ORDER BY id DESC
			LIMIT ?
		 ) ORDER BY id ASC`,
		gameID, gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.PlaySession, &e.Direction, &e.Type, &e.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// SessionEvents returns every event of one play session in order.
func (s *Store) SessionEvents(playSession string) ([]EventEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, game_id, play_session, direction, type, payload, created_at
		 FROM events WHERE play_session = ? ORDER BY id ASC`,
		playSession,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.PlaySession, &e.Direction, &e.Type, &e.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}
