package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"

	"hearthy.dev/internal/carddb"
	"hearthy.dev/internal/config"
	"hearthy.dev/internal/metrics"
	"hearthy.dev/internal/persistence/capture"
	"hearthy.dev/internal/persistence/indexdb"
	"hearthy.dev/internal/persistence/snapshot"
	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
	"hearthy.dev/internal/transport/ws"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to tracker.yaml (optional)")
		inPath     = flag.String("in", "-", "packet stream (.jsonl or .jsonl.zst; - for stdin)")
		cardsPath  = flag.String("cards", "", "card catalog json (overrides config)")
		listen     = flag.String("listen", "", "http listen address for /v1/ws and /metrics (overrides config)")
		resumePath = flag.String("resume", "", "snapshot to resume from (optional)")
		quiet      = flag.Bool("quiet", false, "do not print commits")
		profMode   = flag.String("profile", "", "write a pprof profile: cpu|mem|block|mutex")
		profDir    = flag.String("profile_dir", ".", "profile output directory")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[tracker] ", log.LstdFlags)

	if p := startProfile(*profMode, *profDir); p != nil {
		defer p.Stop()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *cardsPath != "" {
		cfg.CardsPath = *cardsPath
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if cfg.Verbose {
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	cards := carddb.New()
	if cfg.CardsPath != "" {
		if cards, err = carddb.Load(cfg.CardsPath); err != nil {
			logger.Fatalf("load cards: %v", err)
		}
		logger.Printf("cards=%d digest=%s", cards.Len(), cards.Digest())
	}

	dec, err := protocol.NewDecoder()
	if err != nil {
		logger.Fatalf("decoder: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if cfg.Index {
		idx, err = indexdb.OpenSQLite(cfg.IndexPath, cards, log.New(os.Stderr, "[indexdb] ", log.LstdFlags))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	ps := persistSink{index: idx, log: logger}
	if cfg.Snapshot {
		ps.snapshotDir = cfg.SnapshotDir
	}
	m := metrics.New()
	hub := ws.NewHub(cards, cfg.MaxQueue, log.New(os.Stderr, "[ws] ", log.LstdFlags))
	sinks := []tracker.Sink{ps, m, hub}
	if !*quiet {
		sinks = append(sinks, printSink{out: os.Stdout, cards: cards})
	}
	tr := tracker.New(tracker.Config{Cards: cards, Logger: logger, Sinks: sinks})

	if *resumePath != "" {
		snap, err := snapshot.ReadSnapshot(*resumePath)
		if err != nil {
			logger.Fatalf("resume: %v", err)
		}
		tr.Restore(snap.Header.GameID, snap.Header.Seq, snap.ToEntities())
		logger.Printf("resumed game %s at seq=%d digest=%s", tr.GameID(), tr.Seq(), tr.World().Digest())
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Listen != "" {
		srv := newHTTPServer(cfg.Listen, hub, m, logger)
		go func() {
			<-ctx.Done()
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = srv.Shutdown(ctx2)
		}()
		go func() {
			logger.Printf("listening on %s", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("http: %v", err)
			}
		}()
	}

	p := &pipeline{dec: dec, tr: tr, metrics: m, log: logger}
	if cfg.Capture {
		p.capture = capture.NewWriter(cfg.CaptureDir)
		defer p.capture.Close()
	}

	in, err := capture.Open(*inPath)
	if err != nil {
		logger.Fatalf("open input: %v", err)
	}
	defer in.Close()

	if err := p.run(ctx, in); err != nil && err != context.Canceled {
		logger.Printf("stopped: %v", err)
	}
	logger.Printf("done: accepted=%d rejected=%d game=%s seq=%d", p.accepted, p.rejected, tr.GameID(), tr.Seq())

	if cfg.Listen != "" && ctx.Err() == nil && *inPath != "-" {
		logger.Printf("input drained; serving observers until interrupted")
		<-ctx.Done()
	}
}

func newHTTPServer(addr string, hub *ws.Hub, m *metrics.Metrics, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/v1/ws", ws.NewServer(hub, logger).Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type stopper interface{ Stop() }

func startProfile(mode, dir string) stopper {
	opts := []func(*profile.Profile){profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
		return nil
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfileAllocs)
	case "block":
		opts = append(opts, profile.BlockProfile)
	case "mutex":
		opts = append(opts, profile.MutexProfile)
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q\n", mode)
		os.Exit(2)
	}
	return profile.Start(opts...)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
