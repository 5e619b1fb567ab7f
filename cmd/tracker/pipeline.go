package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"hearthy.dev/internal/metrics"
	"hearthy.dev/internal/persistence/capture"
	"hearthy.dev/internal/persistence/indexdb"
	"hearthy.dev/internal/persistence/snapshot"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
	"hearthy.dev/internal/tracker/entity"
)

// pipeline turns raw packet lines into tracker commits.
type pipeline struct {
	dec     *protocol.Decoder
	tr      *tracker.Tracker
	capture *capture.Writer
	metrics *metrics.Metrics
	log     *log.Logger

	accepted int
	rejected int
}

func (p *pipeline) run(ctx context.Context, r io.Reader) error {
	return capture.Scan(r, func(line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return p.handle(line)
	})
}

// handle rejects bad packets without stopping; only capture failures are
// returned.
func (p *pipeline) handle(line []byte) error {
	msg, err := p.dec.DecodePower(line)
	if err != nil {
		p.rejected++
		p.log.Printf("reject: %v", err)
		if p.metrics != nil {
			p.metrics.OnReject(0, err)
		}
		return nil
	}
	if p.metrics != nil {
		p.metrics.ObserveOps(msg)
	}
	if _, err := p.tr.Apply(msg); err != nil {
		p.rejected++
		p.log.Printf("reject seq=%d code=%s: %v", msg.Seq, protocol.CodeOf(err), err)
		return nil
	}
	p.accepted++
	if p.capture != nil {
		if err := p.capture.Write(p.tr.GameID(), line); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
	}
	return nil
}

// printSink writes every commit the way a human follows a game.
type printSink struct {
	tracker.NopSink
	out   io.Writer
	cards entity.CardLookup
}

func (s printSink) OnCommit(ev tracker.CommitEvent) {
	for _, line := range tracker.Lines(ev, s.cards) {
		fmt.Fprintln(s.out, line)
	}
	if ev.GameOver {
		fmt.Fprintf(s.out, "game %s over at seq=%d\n", ev.GameID, ev.Seq)
	}
}

// persistSink writes a snapshot and an index row for every finished game.
type persistSink struct {
	tracker.NopSink
	snapshotDir string
	index       *indexdb.SQLiteIndex
	log         *log.Logger
}

func (s persistSink) OnGameOver(g tracker.GameSummary) {
	path := ""
	if s.snapshotDir != "" {
		path = snapshot.PathFor(s.snapshotDir, g.GameID)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		snap := snapshot.FromEntities(g.GameID, g.Seq, g.Digest, g.Entities)
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			s.log.Printf("snapshot write: %v", err)
			path = ""
		} else {
			s.log.Printf("snapshot %s", path)
		}
	}
	if s.index != nil {
		s.index.RecordGame(g, path)
	}
}
