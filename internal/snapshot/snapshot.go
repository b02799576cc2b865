// Package snapshot persists canvas positions in SQLite so a workspace can be
// restored later.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/canvasflow/internal/bounds"
	"github.com/san-kum/canvasflow/internal/dynamo"
	"github.com/san-kum/canvasflow/internal/sim"
)

// NodePosition is one persisted node.
type NodePosition struct {
	ID       string
	Type     bounds.NodeType
	Position dynamo.Vec3
	Locked   bool
}

// Workspace summarises one saved snapshot.
type Workspace struct {
	Name    string
	Nodes   int
	SavedAt time.Time
}

// Store implements workspace snapshots on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspaces (
		name TEXT PRIMARY KEY,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS node_positions (
		workspace TEXT NOT NULL,
		node_id TEXT NOT NULL,
		type TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL DEFAULT 0,
		locked INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (workspace, node_id),
		FOREIGN KEY (workspace) REFERENCES workspaces(name) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces every row of the workspace in one transaction.
func (s *Store) Save(ctx context.Context, workspace string, nodes []NodePosition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workspaces (name, saved_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET saved_at = excluded.saved_at
	`, workspace, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to upsert workspace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_positions WHERE workspace = ?`, workspace); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO node_positions (workspace, node_id, type, x, y, z, locked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, workspace, n.ID, n.Type.String(),
			n.Position.X, n.Position.Y, n.Position.Z, n.Locked); err != nil {
			return fmt.Errorf("failed to insert %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the workspace's nodes ordered by id.
func (s *Store) Load(ctx context.Context, workspace string) ([]NodePosition, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces WHERE name = ?`, workspace).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query workspace: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownWorkspace, workspace)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, type, x, y, z, locked
		FROM node_positions
		WHERE workspace = ?
		ORDER BY node_id
	`, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	nodes := make([]NodePosition, 0)
	for rows.Next() {
		var (
			n   NodePosition
			typ string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Position.X, &n.Position.Y, &n.Position.Z, &n.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		n.Type = bounds.ParseNodeType(typ)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return nodes, nil
}

// Workspaces lists saved workspaces, most recent first.
func (s *Store) Workspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.name, w.saved_at, COUNT(p.node_id)
		FROM workspaces w
		LEFT JOIN node_positions p ON p.workspace = w.name
		GROUP BY w.name, w.saved_at
		ORDER BY w.saved_at DESC, w.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workspaces: %w", err)
	}
	defer rows.Close()

	out := make([]Workspace, 0)
	for rows.Next() {
		var (
			w       Workspace
			savedAt int64
		)
		if err := rows.Scan(&w.Name, &savedAt, &w.Nodes); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		w.SavedAt = time.UnixMilli(savedAt)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspaces: %w", err)
	}
	return out, nil
}

// Delete removes the workspace and its positions.
func (s *Store) Delete(ctx context.Context, workspace string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_positions WHERE workspace = ?`, workspace); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, workspace)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownWorkspace, workspace)
	}
	return tx.Commit()
}

// FromNodes captures a host node list.
func FromNodes(nodes []sim.Node) []NodePosition {
	out := make([]NodePosition, len(nodes))
	for i, n := range nodes {
		out[i] = NodePosition{ID: n.ID, Type: n.Type, Position: n.Position, Locked: n.Locked}
	}
	return out
}

// Nodes converts a snapshot back into a node list for Driver.Sync.
func Nodes(positions []NodePosition) []sim.Node {
	out := make([]sim.Node, len(positions))
	for i, p := range positions {
		out[i] = sim.Node{ID: p.ID, Type: p.Type, Position: p.Position, Locked: p.Locked}
	}
	return out
}
