package observability

import (
	"context"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// ScoreBuckets covers the default thresholds (35, 70) and catalogs of up to ten weighted questions.
var ScoreBuckets = []float64{0, 10, 20, 35, 50, 70, 100, 150, 300}

// Metrics holds the qualification collectors.
type Metrics struct {
	Answers          *prometheus.CounterVec
	Completions      *prometheus.CounterVec
	ValidationErrors prometheus.Counter
	Resets           prometheus.Counter
	FinalScore       prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qualifica_answers_total",
				Help: "Answers graded, by bucket.",
			},
			[]string{"bucket"},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qualifica_completions_total",
				Help: "Conversations that reached a final classification, replays excluded.",
			},
			[]string{"classification"},
		),
		ValidationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qualifica_validation_errors_total",
			Help: "Requests rejected for missing identifiers.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qualifica_resets_total",
			Help: "Conversations restarted by an empty answer.",
		}),
		FinalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qualifica_final_score",
			Help:    "Score of conversations at completion, replays excluded.",
			Buckets: ScoreBuckets,
		}),
	}
	reg.MustRegister(m.Answers, m.Completions, m.ValidationErrors, m.Resets, m.FinalScore)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			m.Resets.Inc()
		},
		OnAnswerScored: func(ctx context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(string(e.Bucket)).Inc()
		},
		OnCompleted: func(ctx context.Context, e *domain.CompletionEvent) {
			if e.Replay {
				return
			}
			m.Completions.WithLabelValues(string(e.Classification)).Inc()
			m.FinalScore.Observe(float64(e.ScoreTotal))
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			m.ValidationErrors.Inc()
		},
	}
}
