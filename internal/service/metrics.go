package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_games_created_total",
			Help: "Games created, by mode",
		},
		[]string{"mode"},
	)
	PlaysRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_plays_total",
			Help: "Plays stored, by outcome",
		},
		[]string{"outcome"},
	)
	GamesArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rps_games_archived_total",
			Help: "Games moved to the archived state",
		},
	)
	SubmitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_submit_rejected_total",
			Help: "Move submissions refused, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(GamesCreated)
	prometheus.MustRegister(PlaysRecorded)
	prometheus.MustRegister(GamesArchived)
	prometheus.MustRegister(SubmitRejected)
}
