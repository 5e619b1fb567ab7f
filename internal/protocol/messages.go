package protocol

// Power ops.
const (
	OpCreateGame = "CREATE_GAME"
	OpFullEntity = "FULL_ENTITY"
	OpShowEntity = "SHOW_ENTITY"
	OpHideEntity = "HIDE_ENTITY"
	OpTagChange  = "TAG_CHANGE"
)

// POWER (game -> tracker): one batch of entity updates applied atomically.
type PowerMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Ops             []Op   `json:"ops"`
}

type Op struct {
	Op     string `json:"op"`
	Entity int    `json:"entity"`

	// FULL_ENTITY / SHOW_ENTITY / CREATE_GAME
	CardID  string      `json:"card_id,omitempty"`
	Tags    []TagValue  `json:"tags,omitempty"`
	Players []PlayerDef `json:"players,omitempty"`

	// TAG_CHANGE
	Tag   int `json:"tag"`
	Value int `json:"value"`

	// HIDE_ENTITY
	Zone int `json:"zone,omitempty"`
}

type TagValue struct {
	Tag   int `json:"tag"`
	Value int `json:"value"`
}

type PlayerDef struct {
	Entity   int        `json:"entity"`
	PlayerID int        `json:"player_id"`
	Name     string     `json:"name,omitempty"`
	Tags     []TagValue `json:"tags,omitempty"`
}

// HELLO (observer -> tracker)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (tracker -> observer): the committed state at subscription time.
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	ObserverID      string        `json:"observer_id"`
	GameID          string        `json:"game_id,omitempty"`
	Seq             uint64        `json:"seq"`
	Entities        []EntityState `json:"entities"`
}

// COMMIT (tracker -> observer): one applied POWER packet.
type CommitMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	GameID          string         `json:"game_id,omitempty"`
	Seq             uint64         `json:"seq"`
	Created         []EntityState  `json:"created,omitempty"`
	Changed         []EntityChange `json:"changed,omitempty"`
	GameOver        bool           `json:"game_over,omitempty"`
}

type EntityState struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	Tags        []TagState `json:"tags"`
}

type TagState struct {
	Tag   int    `json:"tag"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type EntityChange struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Diff        []TagDiff `json:"diff"`
}

type TagDiff struct {
	Tag    int    `json:"tag"`
	Name   string `json:"name"`
	Before string `json:"before,omitempty"`
	After  string `json:"after"`
}
