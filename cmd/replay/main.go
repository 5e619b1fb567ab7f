package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"hearthy.dev/internal/carddb"
	"hearthy.dev/internal/persistence/capture"
	"hearthy.dev/internal/persistence/indexdb"
	"hearthy.dev/internal/persistence/snapshot"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
)

func main() {
	var (
		capPath   = flag.String("capture", "", "path to <game>.jsonl.zst")
		snapPath  = flag.String("snapshot", "", "path to <game>.snap.zst to verify against (optional)")
		cardsPath = flag.String("cards", "", "card catalog json (optional)")
		indexPath = flag.String("index", "", "list finished games from this index db instead of replaying")
		limit     = flag.Int("limit", 20, "games to list with -index")
		verbose   = flag.Bool("v", false, "print every commit")
	)
	flag.Parse()

	cards := carddb.New()
	if *cardsPath != "" {
		var err error
		if cards, err = carddb.Load(*cardsPath); err != nil {
			fmt.Fprintln(os.Stderr, "load cards:", err)
			os.Exit(1)
		}
	}

	if *indexPath != "" {
		if err := listGames(os.Stdout, *indexPath, cards, *limit); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
		return
	}

	if *capPath == "" {
		fmt.Fprintln(os.Stderr, "missing -capture")
		os.Exit(2)
	}

	var out io.Writer = io.Discard
	if *verbose {
		out = os.Stdout
	}
	res, err := replay(*capPath, cards, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replayed packets=%d rejected=%d entities=%d seq=%d over=%v digest=%s\n",
		res.Packets, res.Rejected, len(res.Summary.Entities), res.Summary.Seq, res.Over, res.Summary.Digest)

	if *snapPath == "" {
		return
	}
	h, err := snapshot.ReadHeader(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	if err := verify(res, h); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: game=%s seq=%d digest=%s\n", h.GameID, h.Seq, h.Digest)
}

type result struct {
	Packets  int
	Rejected int
	Over     bool
	Summary  tracker.GameSummary
}

type linesSink struct {
	tracker.NopSink
	out   io.Writer
	cards *carddb.DB
}

func (s linesSink) OnCommit(ev tracker.CommitEvent) {
	fmt.Fprintf(s.out, "seq=%d\n", ev.Seq)
	for _, line := range tracker.Lines(ev, s.cards) {
		fmt.Fprintln(s.out, line)
	}
}

// replay feeds every captured packet through a fresh tracker.
func replay(path string, cards *carddb.DB, out io.Writer) (result, error) {
	var res result
	dec, err := protocol.NewDecoder()
	if err != nil {
		return res, err
	}
	tr := tracker.New(tracker.Config{
		Cards:  cards,
		Logger: log.New(io.Discard, "", 0),
		Sinks:  []tracker.Sink{linesSink{out: out, cards: cards}},
	})
	err = capture.ReadFile(path, func(line []byte) error {
		res.Packets++
		msg, err := dec.DecodePower(line)
		if err != nil {
			res.Rejected++
			return nil
		}
		if _, err := tr.Apply(msg); err != nil {
			res.Rejected++
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Over = tr.Over()
	res.Summary = tr.Summary()
	return res, nil
}

func verify(res result, h snapshot.Header) error {
	if res.Rejected != 0 {
		return fmt.Errorf("%d captured packets were rejected on replay", res.Rejected)
	}
	if res.Summary.Seq != h.Seq {
		return fmt.Errorf("seq mismatch: replay=%d snapshot=%d", res.Summary.Seq, h.Seq)
	}
	if len(res.Summary.Entities) != h.Entities {
		return fmt.Errorf("entity count mismatch: replay=%d snapshot=%d", len(res.Summary.Entities), h.Entities)
	}
	if res.Summary.Digest != h.Digest {
		return fmt.Errorf("digest mismatch: replay=%s snapshot=%s", res.Summary.Digest, h.Digest)
	}
	return nil
}

func listGames(w io.Writer, path string, cards *carddb.DB, limit int) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	idx, err := indexdb.OpenSQLite(path, cards, nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	games, err := idx.ListGames(context.Background(), limit)
	if err != nil {
		return err
	}
	for _, g := range games {
		fmt.Fprintf(w, "%s seq=%d packets=%d entities=%d ended=%s digest=%s snapshot=%s\n",
			g.GameID, g.Seq, g.Packets, g.Entities, g.EndedAt, g.Digest, g.SnapshotPath)
	}
	return nil
}
