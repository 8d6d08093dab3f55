package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anivault_files_scanned_total",
		Help: "Total number of source files scanned",
	})

	parseOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivault_parse_outcomes_total",
		Help: "Filename parse outcomes by provenance",
	}, []string{"provenance"})

	groupsFormed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "anivault_groups_formed",
		Help: "Number of groups formed in the last grouping pass",
	})

	enrichOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anivault_enrich_outcomes_total",
		Help: "Enrichment outcomes by status",
	}, []string{"status"})

	planItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "anivault_plan_items",
		Help: "Number of plan items by action in the last organize run",
	}, []string{"action"})
)

// RecordFileScanned increments the scanned-file counter.
func RecordFileScanned() { filesScanned.Inc() }

// RecordParseOutcome increments the parse-outcome counter by provenance.
func RecordParseOutcome(provenance string) { parseOutcomes.WithLabelValues(provenance).Inc() }

// SetGroupsFormed records the group count for the current run.
func SetGroupsFormed(n float64) { groupsFormed.Set(n) }

// RecordEnrichOutcome increments the enrichment-outcome counter by status.
func RecordEnrichOutcome(status string) { enrichOutcomes.WithLabelValues(status).Inc() }

// SetPlanItems records the plan item count by action.
func SetPlanItems(action string, n float64) { planItems.WithLabelValues(action).Set(n) }
