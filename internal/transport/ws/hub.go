package ws

import (
	"encoding/json"
	"io"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
	"hearthy.dev/internal/tracker/entity"
)

// Hub fans commits out to observers. It keeps the latest frozen entities so
// a new observer can be welcomed with the committed state; frozen entities
// are never mutated, so sharing them across goroutines is safe.
type Hub struct {
	tracker.NopSink

	cards    entity.CardLookup
	maxQueue int
	log      *log.Logger

	mu       sync.Mutex
	subs     map[string]*Subscription
	gameID   string
	seq      uint64
	entities map[int]*entity.Entity

	dropped atomic.Int64
}

type Subscription struct {
	ID   string
	Name string
	C    <-chan []byte

	out chan []byte
}

// NewHub queues up to maxQueue messages per observer unless the observer
// asks for a different size in HELLO.
func NewHub(cards entity.CardLookup, maxQueue int, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if maxQueue <= 0 {
		maxQueue = 64
	}
	return &Hub{
		cards:    cards,
		maxQueue: maxQueue,
		log:      logger,
		subs:     map[string]*Subscription{},
		entities: map[int]*entity.Entity{},
	}
}

// Subscribe registers an observer and returns the WELCOME it should be sent
// first. Commits published after Subscribe returns are queued on sub.C.
func (h *Hub) Subscribe(name string, maxQueue int) (protocol.WelcomeMsg, *Subscription) {
	if maxQueue <= 0 {
		maxQueue = h.maxQueue
	}
	if maxQueue > 1024 {
		maxQueue = 1024
	}
	out := make(chan []byte, maxQueue)
	sub := &Subscription{ID: uuid.NewString(), Name: name, C: out, out: out}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub.ID] = sub

	ids := make([]int, 0, len(h.entities))
	for id := range h.entities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	states := make([]protocol.EntityState, 0, len(ids))
	for _, id := range ids {
		states = append(states, tracker.EntityState(h.entities[id], h.cards))
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ObserverID:      sub.ID,
		GameID:          h.gameID,
		Seq:             h.seq,
		Entities:        states,
	}, sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; ok {
		delete(h.subs, sub.ID)
		close(sub.out)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped counts messages discarded because an observer queue was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// OnCommit records the commit and publishes it without blocking the tracker.
func (h *Hub) OnCommit(ev tracker.CommitEvent) {
	b, err := json.Marshal(tracker.CommitMsg(ev, h.cards))
	if err != nil {
		h.log.Printf("marshal commit seq=%d: %v", ev.Seq, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.GameID != h.gameID {
		h.gameID = ev.GameID
		h.entities = map[int]*entity.Entity{}
	}
	h.seq = ev.Seq
	for _, e := range ev.Commit.Created {
		h.entities[e.ID()] = e
	}
	for _, c := range ev.Commit.Changed {
		h.entities[c.Entity.ID()] = c.Entity
	}
	for _, sub := range h.subs {
		select {
		case sub.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
}
