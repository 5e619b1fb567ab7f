package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"hearthy.dev/internal/hs/tag"
	"hearthy.dev/internal/tracker/entity"
)

const Version = 1

const Suffix = ".snap.zst"

type Header struct {
	Version  int    `json:"version"`
	GameID   string `json:"game_id"`
	Seq      uint64 `json:"seq"`
	Digest   string `json:"digest"`
	Entities int    `json:"entities"`
}

type SnapshotV1 struct {
	Header   Header     `json:"header"`
	Entities []EntityV1 `json:"entities"`
}

type EntityV1 struct {
	ID   int     `json:"id"`
	Tags []TagV1 `json:"tags"`
}

type TagV1 struct {
	Tag    int    `json:"tag"`
	Int    int    `json:"int,omitempty"`
	Text   string `json:"text,omitempty"`
	IsText bool   `json:"is_text,omitempty"`
}

// FromEntities captures frozen entities in id order.
func FromEntities(gameID string, seq uint64, digest string, es []*entity.Entity) SnapshotV1 {
	snap := SnapshotV1{
		Header: Header{
			Version:  Version,
			GameID:   gameID,
			Seq:      seq,
			Digest:   digest,
			Entities: len(es),
		},
		Entities: make([]EntityV1, 0, len(es)),
	}
	for _, e := range es {
		pairs := e.Pairs()
		ev := EntityV1{ID: e.ID(), Tags: make([]TagV1, 0, len(pairs))}
		for _, p := range pairs {
			tv := TagV1{Tag: int(p.Tag)}
			if s, ok := p.Value.Text(); ok {
				tv.Text, tv.IsText = s, true
			} else {
				tv.Int, _ = p.Value.Int()
			}
			ev.Tags = append(ev.Tags, tv)
		}
		snap.Entities = append(snap.Entities, ev)
	}
	return snap
}

// ToEntities rebuilds the frozen entities.
func (s SnapshotV1) ToEntities() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.Entities))
	for _, ev := range s.Entities {
		pairs := make([]tag.Pair, 0, len(ev.Tags))
		for _, tv := range ev.Tags {
			v := tag.Int(tv.Int)
			if tv.IsText {
				v = tag.Text(tv.Text)
			}
			pairs = append(pairs, tag.P(tag.Tag(tv.Tag), v))
		}
		out = append(out, entity.New(ev.ID, pairs...))
	}
	return out
}

func PathFor(dir, gameID string) string {
	return filepath.Join(dir, gameID+Suffix)
}

// WriteSnapshot writes a JSON header line followed by the gob body, all
// zstd-compressed. The file is replaced atomically.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, snap); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the leading header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
