package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const namespace = "tictactoe"

const (
	PlayerHuman    = "human"
	PlayerComputer = "computer"
)

type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted *prometheus.CounterVec
	moves           *prometheus.CounterVec
	gamesFinished   *prometheus.CounterVec
	movesRejected   *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	that := &Recorder{
		registry: prometheus.NewRegistry(),

		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Game sessions started, by mode.",
		}, []string{"mode"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves committed to history, by mode and player kind.",
		}, []string{"mode", "player"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached a win or a draw.",
		}, []string{"mode", "result"}),
		movesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_rejected_total",
			Help:      "Moves and jumps rejected by the engine, by reason.",
		}, []string{"reason"}),
	}

	that.registry.MustRegister(
		that.sessionsStarted,
		that.moves,
		that.gamesFinished,
		that.movesRejected,
	)

	return that
}

func (that *Recorder) SessionStarted(mode entity.Mode) {
	that.sessionsStarted.WithLabelValues(string(mode)).Inc()
}

func (that *Recorder) MovePlayed(mode entity.Mode, player string) {
	that.moves.WithLabelValues(string(mode), player).Inc()
}

func (that *Recorder) GameFinished(mode entity.Mode, outcome entity.Outcome) {
	result := "draw"
	switch outcome.Winner {
	case entity.PlayerX:
		result = "x"
	case entity.PlayerO:
		result = "o"
	}

	that.gamesFinished.WithLabelValues(string(mode), result).Inc()
}

func (that *Recorder) MoveRejected(reason string) {
	that.movesRejected.WithLabelValues(reason).Inc()
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (that *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{})
}
