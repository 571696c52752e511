// Package persistence provides SQLite-based run snapshots for
// inspection. The simulation never reads state back from disk; the
// database exists so a finished or running simulation can be examined
// with external tooling.
package persistence

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hamlet/internal/agents"
	"github.com/talgya/hamlet/internal/engine"
)

// DB wraps a SQLite connection for run snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		world TEXT NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agents (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		traits TEXT NOT NULL,
		status TEXT NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		action TEXT NOT NULL,
		address TEXT NOT NULL,
		PRIMARY KEY (run_id, name)
	);

	CREATE TABLE IF NOT EXISTS memory_nodes (
		run_id TEXT NOT NULL,
		agent TEXT NOT NULL,
		node_id TEXT NOT NULL,
		type TEXT NOT NULL,
		created TEXT NOT NULL,
		relevance REAL NOT NULL,
		keywords TEXT NOT NULL,
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object TEXT NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (run_id, agent, node_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		sim_time TEXT NOT NULL,
		agent TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_nodes_agent ON memory_nodes(run_id, agent);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a run.
func (db *DB) StartRun(runID, worldName string, startedAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO runs (id, world, started_at) VALUES (?, ?, ?)",
		runID, worldName, startedAt.Format(time.RFC3339),
	)
	return err
}

// SaveAgents snapshots the roster for a run (full replace).
func (db *DB) SaveAgents(runID string, roster []*agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents WHERE run_id = ?", runID); err != nil {
		return err
	}

	for _, a := range roster {
		action, address := "", ""
		if act := a.Short.Action; act != nil {
			action = act.Description
			address = act.Address
		}
		_, err := tx.Exec(`INSERT INTO agents
			(run_id, name, age, traits, status, pos_x, pos_y, action, address)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, a.Name, a.Age, a.Traits, a.Status,
			a.Position.X, a.Position.Y, action, address,
		)
		if err != nil {
			return fmt.Errorf("insert agent %s: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// SaveMemoryNodes snapshots an agent's full memory stream (full
// replace for that agent).
func (db *DB) SaveMemoryNodes(runID string, a *agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM memory_nodes WHERE run_id = ? AND agent = ?", runID, a.Name); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO memory_nodes
		(run_id, agent, node_id, type, created, relevance, keywords,
		 subject, predicate, object, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range a.Memory.All() {
		_, err := stmt.Exec(
			runID, a.Name, n.ID, string(n.Type),
			n.Created.Format(time.RFC3339), n.Relevance,
			strings.Join(n.Keywords, ","),
			n.Event.Subject, n.Event.Predicate, n.Event.Object, n.Event.Description,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends tick events.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, sim_time, agent, description) VALUES (?, ?, ?, ?, ?)",
			runID, e.Tick, e.Time.Format(time.RFC3339), e.Agent, e.Description,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair for a run.
func (db *DB) SaveMeta(runID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		runID, key, value,
	)
	return err
}

// GetMeta retrieves a run metadata value.
func (db *DB) GetMeta(runID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", runID, key)
	return value, err
}

// SaveSnapshot performs a full snapshot of a simulation. Tick events
// already persisted by an earlier snapshot of the same run are skipped.
func (db *DB) SaveSnapshot(sim *engine.Simulation) error {
	runID := sim.RunID.String()
	slog.Info("saving snapshot", "run", runID, "agents", len(sim.World.Agents))

	if err := db.SaveAgents(runID, sim.World.Agents); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	for _, a := range sim.World.Agents {
		if err := db.SaveMemoryNodes(runID, a); err != nil {
			return fmt.Errorf("save memory for %s: %w", a.Name, err)
		}
	}

	var savedThrough uint64
	if raw, err := db.GetMeta(runID, "last_tick"); err == nil {
		fmt.Sscanf(raw, "%d", &savedThrough)
	}
	var fresh []engine.Event
	for _, e := range sim.RecentEvents(0) {
		if e.Tick > savedThrough {
			fresh = append(fresh, e)
		}
	}
	if err := db.SaveEvents(runID, fresh); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta(runID, "last_tick", fmt.Sprintf("%d", sim.LastTick)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("snapshot saved", "run", runID)
	return nil
}

// StoredEvent is one persisted tick event row.
type StoredEvent struct {
	Tick        uint64 `db:"tick"`
	SimTime     string `db:"sim_time"`
	Agent       string `db:"agent"`
	Description string `db:"description"`
}

// RecentEvents returns the most recent N persisted events for a run,
// newest first. An empty runID returns events across runs.
func (db *DB) RecentEvents(runID string, limit int) ([]StoredEvent, error) {
	var events []StoredEvent
	if runID == "" {
		err := db.conn.Select(&events,
			"SELECT tick, sim_time, agent, description FROM events ORDER BY id DESC LIMIT ?", limit)
		return events, err
	}
	err := db.conn.Select(&events,
		"SELECT tick, sim_time, agent, description FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit)
	return events, err
}

// Runs lists the recorded run ids, newest first.
func (db *DB) Runs() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids, "SELECT id FROM runs ORDER BY started_at DESC")
	return ids, err
}

// NodeCount reports the stored memory nodes for a run.
func (db *DB) NodeCount(runID string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM memory_nodes WHERE run_id = ?", runID)
	return n, err
}
