package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	obserrors "github.com/javaDevJT/auth-hooker/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultInvalid  = "invalid"
	ResultUnsigned = "unsigned"
	ResultNoop     = "noop"
)

// Session transitions.
const (
	TransitionCreated   = "created"
	TransitionCompleted = "completed"
	TransitionFailed    = "failed"
	TransitionExpired   = "expired"
)

// Recorder receives verification pipeline events.
type Recorder interface {
	SessionTransition(transition, result string, err error)
	IDTokenValidation(result string)
	JWKSFetch(result string)
	TokenExchange(result string, elapsed time.Duration)
	SweepStep(step, result string, rows int64, elapsed time.Duration)
}

// Noop discards every event.
type Noop struct{}

func (Noop) SessionTransition(string, string, error) {}
func (Noop) IDTokenValidation(string) {}
func (Noop) JWKSFetch(string) {}
func (Noop) TokenExchange(string, time.Duration) {}
func (Noop) SweepStep(string, string, int64, time.Duration) {}

// OrNoop returns r, or a Noop recorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}

// Prometheus records events into Prometheus collectors.
type Prometheus struct {
	sessionTransitions *prometheus.CounterVec
	idTokenValidations *prometheus.CounterVec
	jwksFetches        *prometheus.CounterVec
	exchangeDuration   *prometheus.HistogramVec
	sweepRows          *prometheus.CounterVec
	sweepDuration      *prometheus.HistogramVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus builds and registers the collectors. A nil registry uses the default registerer.
// Collectors already registered by an earlier call are reused.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prometheus{
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_session_transitions_total",
			Help: "Verification session transitions by outcome",
		}, []string{"transition", "result", "error_class"}),
		idTokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "id_token_validations_total",
			Help: "ID token validations by result",
		}, []string{"result"}),
		jwksFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwks_fetches_total",
			Help: "JWKS document fetches by result",
		}, []string{"result"}),
		exchangeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "token_exchange_duration_seconds",
			Help:    "Authorization code exchange latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		sweepRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_sweep_rows_total",
			Help: "Rows affected by the session cleanup sweep",
		}, []string{"step"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_sweep_duration_seconds",
			Help:    "Session cleanup sweep step latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"step", "result"}),
	}

	var err error
	if p.sessionTransitions, err = register(reg, p.sessionTransitions); err != nil {
		return nil, err
	}
	if p.idTokenValidations, err = register(reg, p.idTokenValidations); err != nil {
		return nil, err
	}
	if p.jwksFetches, err = register(reg, p.jwksFetches); err != nil {
		return nil, err
	}
	if p.exchangeDuration, err = register(reg, p.exchangeDuration); err != nil {
		return nil, err
	}
	if p.sweepRows, err = register(reg, p.sweepRows); err != nil {
		return nil, err
	}
	if p.sweepDuration, err = register(reg, p.sweepDuration); err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// SessionTransition counts a session lifecycle event. Failed results carry the error class.
func (p *Prometheus) SessionTransition(transition, result string, err error) {
	class := ""
	if err != nil && result == ResultError {
		class = obserrors.Classify(err)
	}
	p.sessionTransitions.WithLabelValues(transition, result, class).Inc()
}

func (p *Prometheus) IDTokenValidation(result string) {
	p.idTokenValidations.WithLabelValues(result).Inc()
}

func (p *Prometheus) JWKSFetch(result string) {
	p.jwksFetches.WithLabelValues(result).Inc()
}

func (p *Prometheus) TokenExchange(result string, elapsed time.Duration) {
	p.exchangeDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (p *Prometheus) SweepStep(step, result string, rows int64, elapsed time.Duration) {
	if rows > 0 {
		p.sweepRows.WithLabelValues(step).Add(float64(rows))
	}
	p.sweepDuration.WithLabelValues(step, result).Observe(elapsed.Seconds())
}
