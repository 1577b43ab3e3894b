package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rentflow/pkg/domain"
)

var commandBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for marketplace commands.
type Metrics struct {
	Commands         *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	OffersSubmitted  prometheus.Counter
	OffersAccepted   prometheus.Counter
	FundsHeld        prometheus.Counter
	FundsTransferred prometheus.Counter
}

// New registers the marketplace metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rentflow_commands_total",
			Help: "Marketplace commands by name and outcome (ok or the error code)",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentflow_command_duration_seconds",
			Help:    "Duration of marketplace commands including the commit",
			Buckets: commandBuckets,
		}, []string{"command"}),
		OffersSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_offers_submitted_total",
			Help: "Offers that passed every submission guard",
		}),
		OffersAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_offers_accepted_total",
			Help: "Offers converted into tenancies",
		}),
		FundsHeld: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_funds_held_total",
			Help: "Sum of amounts placed on hold by offer submissions",
		}),
		FundsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_funds_transferred_total",
			Help: "Sum of amounts moved from tenants to landlords on acceptance",
		}),
	}
}

// ObserveCommand records one command outcome. Call with time.Now() taken
// before the command started.
func (m *Metrics) ObserveCommand(command, outcome string, start time.Time) {
	m.Commands.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementOfferSubmitted(held domain.Amount) {
	m.OffersSubmitted.Inc()
	m.FundsHeld.Add(float64(held))
}

func (m *Metrics) IncrementOfferAccepted(transferred domain.Amount) {
	m.OffersAccepted.Inc()
	m.FundsTransferred.Add(float64(transferred))
}
