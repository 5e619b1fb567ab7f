// Package indexdb keeps a queryable SQLite index of finished games.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/tracker"
	"hearthy.dev/internal/tracker/entity"
)

type SQLiteIndex struct {
	db    *sql.DB
	cards entity.CardLookup
	log   *log.Logger

	// mu orders sends on ch against close(ch).
	mu     sync.Mutex
	closed bool
	ch     chan gameReq
	wg     sync.WaitGroup
	once   sync.Once

	dropped atomic.Int64
}

type gameReq struct {
	game         tracker.GameSummary
	snapshotPath string
	recordedAt   string
}

type GameRow struct {
	GameID       string
	Seq          uint64
	Packets      int
	Entities     int
	Digest       string
	SnapshotPath string
	StartedAt    string
	EndedAt      string
}

type EntityRow struct {
	EntityID    int
	CardID      string
	Controller  int
	Zone        string
	Description string
}

func OpenSQLite(path string, cards entity.CardLookup, logger *log.Logger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:    db,
		cards: cards,
		log:   logger,
		ch:    make(chan gameReq, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			packets INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			digest TEXT NOT NULL,
			snapshot_path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE TABLE IF NOT EXISTS entities (
			game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
			entity_id INTEGER NOT NULL,
			card_id TEXT NOT NULL,
			controller INTEGER NOT NULL,
			zone TEXT NOT NULL,
			description TEXT NOT NULL,
			tags_json TEXT NOT NULL,
			PRIMARY KEY (game_id, entity_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entities_card ON entities(card_id);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped counts games discarded because the writer fell behind.
func (s *SQLiteIndex) Dropped() int64 { return s.dropped.Load() }

// RecordGame queues a finished game. Entities are frozen, so the writer
// goroutine reads them without copying. Games recorded after Close are
// discarded.
func (s *SQLiteIndex) RecordGame(g tracker.GameSummary, snapshotPath string) {
	if s == nil {
		return
	}
	r := gameReq{
		game:         g,
		snapshotPath: snapshotPath,
		recordedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		if err := s.writeGame(context.Background(), r); err != nil {
			s.log.Printf("index game %s: %v", r.game.GameID, err)
		}
	}
}

func (s *SQLiteIndex) writeGame(ctx context.Context, r gameReq) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	g := r.game
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO games(game_id,seq,packets,entities,digest,snapshot_path,started_at,ended_at,recorded_at) VALUES(?,?,?,?,?,?,?,?,?)`,
		g.GameID,
		int64(g.Seq),
		g.Packets,
		len(g.Entities),
		g.Digest,
		r.snapshotPath,
		formatTime(g.StartedAt),
		formatTime(g.EndedAt),
		r.recordedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE game_id=?`, g.GameID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entities(game_id,entity_id,card_id,controller,zone,description,tags_json) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range g.Entities {
		cardID, _ := e.Get(tag.PowerName).Text()
		controller, _ := e.Get(tag.Controller).Int()
		zone := ""
		if z := e.Get(tag.Zone); z.IsSet() {
			zone = tag.FormatValue(tag.Zone, z)
		}
		tags := map[string]string{}
		for _, p := range e.Pairs() {
			tags[tag.FormatName(p.Tag)+"/"+fmt.Sprint(int(p.Tag))] = tag.FormatValue(p.Tag, p.Value)
		}
		tagsJSON, _ := json.Marshal(tags)
		if _, err := stmt.ExecContext(ctx, g.GameID, e.ID(), cardID, controller, zone, e.Describe(s.cards), string(tagsJSON)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ListGames returns the most recently ended games first.
func (s *SQLiteIndex) ListGames(ctx context.Context, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT game_id,seq,packets,entities,digest,snapshot_path,started_at,ended_at FROM games ORDER BY ended_at DESC, game_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var (
			g   GameRow
			seq int64
		)
		if err := rows.Scan(&g.GameID, &seq, &g.Packets, &g.Entities, &g.Digest, &g.SnapshotPath, &g.StartedAt, &g.EndedAt); err != nil {
			return nil, err
		}
		g.Seq = uint64(seq)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) GameEntities(ctx context.Context, gameID string) ([]EntityRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entity_id,card_id,controller,zone,description FROM entities WHERE game_id=? ORDER BY entity_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntityRow
	for rows.Next() {
		var e EntityRow
		if err := rows.Scan(&e.EntityID, &e.CardID, &e.Controller, &e.Zone, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
