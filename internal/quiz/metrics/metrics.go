// Package metrics exposes Prometheus counters for the quiz engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QuizzesCreated prometheus.Counter
	Submissions    *prometheus.CounterVec
	QuizzesDeleted prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QuizzesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_quiz_created_total",
			Help: "Number of quizzes created.",
		}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_quiz_submissions_total",
			Help: "Number of graded submissions by outcome.",
		}, []string{"outcome"}),
		QuizzesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_quiz_deleted_total",
			Help: "Number of quizzes deleted.",
		}),
	}
}
