// Package tracker applies POWER packets to the entity state of the game
// currently being played.
package tracker

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"hearthy.dev/internal/hs/enums"
	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker/entity"
	"hearthy.dev/internal/tracker/world"
)

// CommitEvent is one applied packet.
type CommitEvent struct {
	GameID   string
	Seq      uint64
	Commit   world.Commit
	GameOver bool

	// Entities is the size of the committed world after this packet.
	Entities int
}

// GameSummary is handed to sinks once the game entity reaches COMPLETE.
type GameSummary struct {
	GameID    string
	Seq       uint64
	Packets   int
	Entities  []*entity.Entity
	Digest    string
	StartedAt time.Time
	EndedAt   time.Time
}

// Sink observes the tracker. Methods are called synchronously from the
// goroutine driving Apply and must not call back into the tracker.
type Sink interface {
	OnCommit(ev CommitEvent)
	OnReject(seq uint64, err error)
	OnGameOver(g GameSummary)
}

// NopSink can be embedded to implement only part of Sink.
type NopSink struct{}

func (NopSink) OnCommit(CommitEvent)   {}
func (NopSink) OnReject(uint64, error) {}
func (NopSink) OnGameOver(GameSummary) {}

type Config struct {
	Cards  entity.CardLookup
	Logger *log.Logger
	Sinks  []Sink

	// NewGameID defaults to uuid.NewString.
	NewGameID func() string
	Now       func() time.Time
}

type Tracker struct {
	cfg Config
	log *log.Logger

	w          *world.World
	gameID     string
	gameEntity int
	seq        uint64
	packets    int
	startedAt  time.Time
	over       bool
}

func New(cfg Config) *Tracker {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.NewGameID == nil {
		cfg.NewGameID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tracker{cfg: cfg, log: cfg.Logger, w: world.New()}
}

func (t *Tracker) World() *world.World      { return t.w }
func (t *Tracker) GameID() string           { return t.gameID }
func (t *Tracker) Seq() uint64              { return t.seq }
func (t *Tracker) Over() bool               { return t.over }
func (t *Tracker) Cards() entity.CardLookup { return t.cfg.Cards }

// Apply runs msg as one transaction. On error nothing is committed.
func (t *Tracker) Apply(msg protocol.PowerMsg) (world.Commit, error) {
	c, err := t.apply(msg)
	if err != nil {
		for _, s := range t.cfg.Sinks {
			s.OnReject(msg.Seq, err)
		}
		return c, err
	}
	return c, nil
}

func (t *Tracker) apply(msg protocol.PowerMsg) (world.Commit, error) {
	var c world.Commit

	// A CREATE_GAME packet on a live tracker builds the next game in a fresh
	// world; the current game is only replaced once that packet commits.
	newGame := len(msg.Ops) > 0 && msg.Ops[0].Op == protocol.OpCreateGame && t.gameID != ""

	// A finished game's stream may restart its numbering.
	if t.seq != 0 && msg.Seq <= t.seq && !(newGame && t.over) {
		return c, protocol.Errorf(protocol.ErrBadRequest, "stale seq %d (last %d)", msg.Seq, t.seq)
	}

	w, gameEntity := t.w, t.gameEntity
	if newGame {
		w, gameEntity = world.New(), 0
	}
	tx, err := w.Begin()
	if err != nil {
		return c, err
	}
	for i, op := range msg.Ops {
		if op.Op == protocol.OpCreateGame {
			if gameEntity != 0 {
				tx.Rollback()
				return c, protocol.Errorf(protocol.ErrConflict, "op %d: game already created", i)
			}
			gameEntity = op.Entity
		}
		if err := applyOp(tx, op); err != nil {
			tx.Rollback()
			return c, fmt.Errorf("op %d %s: %w", i, op.Op, err)
		}
	}
	c, err = tx.Commit()
	if err != nil {
		return c, err
	}

	if newGame {
		if !t.over {
			t.log.Printf("game %s abandoned at seq=%d", t.gameID, t.seq)
		}
		t.reset()
		t.w = w
	}
	if t.gameID == "" {
		t.gameID = t.cfg.NewGameID()
		t.startedAt = t.cfg.Now()
		t.log.Printf("game %s started", t.gameID)
	}
	t.gameEntity = gameEntity
	t.seq = msg.Seq
	t.packets++

	ev := CommitEvent{GameID: t.gameID, Seq: t.seq, Commit: c, Entities: t.w.Len()}
	finished := !t.over && t.gameComplete()
	if finished {
		t.over = true
		ev.GameOver = true
	}
	for _, s := range t.cfg.Sinks {
		s.OnCommit(ev)
	}
	if finished {
		g := t.Summary()
		t.log.Printf("game %s complete: packets=%d entities=%d digest=%s", g.GameID, g.Packets, len(g.Entities), g.Digest)
		for _, s := range t.cfg.Sinks {
			s.OnGameOver(g)
		}
	}
	return c, nil
}

func (t *Tracker) gameComplete() bool {
	if t.gameEntity == 0 {
		return false
	}
	g, ok := t.w.Get(t.gameEntity)
	if !ok {
		return false
	}
	return g.Get(tag.State) == tag.Int(int(enums.StateComplete))
}

// Summary snapshots the committed state of the current game.
func (t *Tracker) Summary() GameSummary {
	return GameSummary{
		GameID:    t.gameID,
		Seq:       t.seq,
		Packets:   t.packets,
		Entities:  t.w.Entities(),
		Digest:    t.w.Digest(),
		StartedAt: t.startedAt,
		EndedAt:   t.cfg.Now(),
	}
}

// Restore resumes a game from previously frozen entities.
func (t *Tracker) Restore(gameID string, seq uint64, es []*entity.Entity) {
	t.reset()
	t.gameID = gameID
	t.seq = seq
	t.startedAt = t.cfg.Now()
	t.w.Load(es)
	for _, e := range es {
		if e.Get(tag.CardType) == tag.Int(int(enums.CardTypeGame)) {
			t.gameEntity = e.ID()
		}
	}
	t.over = t.gameComplete()
}

// Preview shows what entity id would look like with pairs applied.
func (t *Tracker) Preview(id int, pairs ...tag.Pair) (string, error) {
	v, err := t.w.Preview(id, pairs...)
	if err != nil {
		return "", err
	}
	return v.Describe(t.cfg.Cards), nil
}

func (t *Tracker) reset() {
	t.w = world.New()
	t.gameID = ""
	t.gameEntity = 0
	t.seq = 0
	t.packets = 0
	t.over = false
}
