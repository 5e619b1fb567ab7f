// Package carddb resolves card references to display names.
package carddb

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hearthy.dev/internal/hs/enums"
)

var ErrCardNotFound = errors.New("card not found")

//go:embed cards.schema.json
var cardsSchema string

type CardDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Cost        int    `json:"cost,omitempty"`
	Atk         int    `json:"atk,omitempty"`
	Health      int    `json:"health,omitempty"`
	Collectible bool   `json:"collectible,omitempty"`
}

func (d CardDef) CardType() enums.CardType {
	ct, _ := enums.ParseCardType(d.Type)
	return ct
}

// DB is an immutable card catalog. The zero value knows no cards.
type DB struct {
	byID   map[string]CardDef
	digest string
}

// Load reads a JSON card catalog from path.
func Load(path string) (*DB, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	db, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Parse validates raw against the catalog schema and indexes it by card id.
func Parse(raw []byte) (*DB, error) {
	schema, err := jsonschema.CompileString("cards.schema.json", cardsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile cards schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}

	var defs []CardDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}
	db := &DB{byID: make(map[string]CardDef, len(defs))}
	for _, d := range defs {
		if _, dup := db.byID[d.ID]; dup {
			return nil, fmt.Errorf("cards: duplicate id %q", d.ID)
		}
		db.byID[d.ID] = d
	}
	sum := sha256.Sum256(raw)
	db.digest = hex.EncodeToString(sum[:])
	return db, nil
}

func New(defs ...CardDef) *DB {
	db := &DB{byID: make(map[string]CardDef, len(defs))}
	for _, d := range defs {
		db.byID[d.ID] = d
	}
	return db
}

// Get is safe on a nil DB, which knows no cards.
func (db *DB) Get(cardID string) (CardDef, error) {
	if db == nil {
		return CardDef{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	d, ok := db.byID[cardID]
	if !ok {
		return CardDef{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	return d, nil
}

// CardName satisfies entity.CardLookup.
func (db *DB) CardName(cardID string) (string, error) {
	d, err := db.Get(cardID)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func (db *DB) Len() int { return len(db.byID) }

// Digest is the sha256 of the source catalog; empty for New.
func (db *DB) Digest() string { return db.digest }

// IDs returns every card id, sorted.
func (db *DB) IDs() []string {
	ids := make([]string, 0, len(db.byID))
	for id := range db.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
