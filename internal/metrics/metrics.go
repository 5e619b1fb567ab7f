// Package metrics exports tracker activity as prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hearthy.dev/internal/protocol"
	"hearthy.dev/internal/tracker"
)

const namespace = "hearthy"

// Metrics implements tracker.Sink. Every collector lives on its own registry
// so several trackers (and tests) never collide on the default one.
type Metrics struct {
	reg *prometheus.Registry

	packets         prometheus.Counter
	ops             *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	entitiesCreated prometheus.Counter
	tagsChanged     prometheus.Counter
	gameEntities    prometheus.Gauge
	gamesFinished   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		packets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_committed_total",
			Help:      "POWER packets committed.",
		}),
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Decoded ops by kind.",
		}, []string{"op"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_rejected_total",
			Help:      "Packets rejected by decode or apply, by error code.",
		}, []string{"code"}),
		entitiesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_created_total",
			Help:      "Entities created by committed packets.",
		}),
		tagsChanged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_changed_total",
			Help:      "Net tag changes committed on existing entities.",
		}),
		gameEntities: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "game_entities",
			Help:      "Entities in the current game.",
		}),
		gamesFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached STATE COMPLETE.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveOps counts the ops of a decoded packet before it is applied.
func (m *Metrics) ObserveOps(msg protocol.PowerMsg) {
	for _, op := range msg.Ops {
		m.ops.WithLabelValues(op.Op).Inc()
	}
}

func (m *Metrics) OnCommit(ev tracker.CommitEvent) {
	m.packets.Inc()
	m.entitiesCreated.Add(float64(len(ev.Commit.Created)))
	m.gameEntities.Set(float64(ev.Entities))
	for _, c := range ev.Commit.Changed {
		m.tagsChanged.Add(float64(len(c.Changes)))
	}
}

func (m *Metrics) OnReject(_ uint64, err error) {
	m.rejected.WithLabelValues(protocol.CodeOf(err)).Inc()
}

func (m *Metrics) OnGameOver(tracker.GameSummary) {
	m.gamesFinished.Inc()
}
