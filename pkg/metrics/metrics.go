// Package metrics exposes the progress of a search as prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
	"github.com/ihtc/ihtp-ga/pkg/warmstart"
)

const namespace = "ihtp"

// Recorder holds the search collectors. It implements algorithms.Observer.
type Recorder struct {
	eras            prometheus.Counter
	bestSoftCost    prometheus.Gauge
	meanSoftCost    prometheus.Gauge
	uniqueSchedules prometheus.Gauge
	stagnation      prometheus.Gauge
	probabilities   *prometheus.GaugeVec
	children        *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
	injections      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	eraDuration     prometheus.Histogram

	oracleDuration prometheus.Histogram
	oracleErrors   prometheus.Counter
}

var _ algorithms.Observer = &Recorder{}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		eras: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eras_total",
			Help:      "Number of completed eras.",
		}),
		bestSoftCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_soft_cost",
			Help:      "Soft cost of the best feasible schedule found so far.",
		}),
		meanSoftCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_mean_soft_cost",
			Help:      "Mean soft cost of the current population.",
		}),
		uniqueSchedules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_unique_schedules",
			Help:      "Number of distinct schedules in the current population.",
		}),
		stagnation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stagnation_eras",
			Help:      "Eras since the best soft cost last improved.",
		}),
		probabilities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operator_probability",
			Help:      "Operator probabilities in effect.",
		}, []string{"operator"}),
		children: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "children_total",
			Help:      "Children produced by the genetic operators, by outcome.",
		}, []string{"outcome"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Children scored by the oracle, by feasibility.",
		}, []string{"result"}),
		injections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injections_total",
			Help:      "Fresh chromosomes injected into the population.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_rejections_total",
			Help:      "Randomly constructed chromosomes dropped while sampling, by reason.",
		}, []string{"reason"}),
		eraDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "era_duration_seconds",
			Help:      "Wall time of an era.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Latency of oracle evaluations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		oracleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Oracle evaluations that failed to produce a score.",
		}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{
		r.eras, r.bestSoftCost, r.meanSoftCost, r.uniqueSchedules, r.stagnation, r.probabilities,
		r.children, r.evaluations, r.injections, r.rejections, r.eraDuration,
		r.oracleDuration, r.oracleErrors,
	} {
		errs = append(errs, reg.Register(c))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// ObserveEra records the statistics of one era.
func (r *Recorder) ObserveEra(_ context.Context, s algorithms.EraStats) error {
	r.eras.Inc()
	r.bestSoftCost.Set(float64(s.BestSoftCost))
	r.meanSoftCost.Set(s.MeanSoftCost)
	r.uniqueSchedules.Set(float64(s.Unique))
	r.stagnation.Set(float64(s.Stagnation))

	r.probabilities.WithLabelValues("crossover").Set(s.Probabilities.Crossover)
	r.probabilities.WithLabelValues("mutation").Set(s.Probabilities.Mutation)
	r.probabilities.WithLabelValues("schedule_non_mandatory").Set(s.Probabilities.ScheduleNonMandatory)
	r.probabilities.WithLabelValues("unschedule_non_mandatory").Set(s.Probabilities.UnscheduleNonMandatory)

	r.children.WithLabelValues("accepted").Add(float64(s.Accepted))
	r.children.WithLabelValues("infeasible").Add(float64(s.Infeasible))
	r.children.WithLabelValues("unchanged").Add(float64(s.Unchanged))
	r.children.WithLabelValues("repair_failed").Add(float64(s.RepairFailed))
	r.children.WithLabelValues("overbooked").Add(float64(s.Overbooked))
	r.evaluations.WithLabelValues("feasible").Add(float64(s.Accepted))
	r.evaluations.WithLabelValues("infeasible").Add(float64(s.Infeasible))

	r.injections.WithLabelValues("stagnation").Add(float64(s.Injected))
	if s.EnforcedInjection {
		r.injections.WithLabelValues("enforced").Inc()
	}
	r.eraDuration.Observe(s.Duration.Seconds())
	return nil
}

// ObserveRejection counts a dropped sample. It fits
// warmstart.WithRejectionHook.
func (r *Recorder) ObserveRejection(reason warmstart.Rejection) {
	r.rejections.WithLabelValues(string(reason)).Inc()
}

// InstrumentOracle wraps f to record evaluation latency and failures.
func (r *Recorder) InstrumentOracle(f oracle.CostFunc) oracle.CostFunc {
	return oracle.Func(func(ctx context.Context, sol *v1alpha1.Solution) (oracle.Result, error) {
		start := time.Now()
		res, err := f.Evaluate(ctx, sol)
		r.oracleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			r.oracleErrors.Inc()
		}
		return res, err
	})
}
