// Package metrics defines all custom Prometheus metrics for the client
// access directory. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access_directory"

// ClientsRegisteredTotal counts record creations.
// Label:
//   - source: "manual" (admin form) or "import" (bulk pipeline)
var ClientsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_registered_total",
		Help:      "Total number of client records created or replaced, by source.",
	},
	[]string{"source"},
)

// ClientEditsTotal counts edits that changed at least one field (and
// therefore appended an audit entry). No-op edits are not counted.
var ClientEditsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_edits_total",
		Help:      "Total number of client edits that produced an audit entry.",
	},
)

// ClientsRemovedTotal counts hard deletions.
var ClientsRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_removed_total",
		Help:      "Total number of client records removed.",
	},
)

// LoginResetsTotal counts administrative login resets.
// Label:
//   - kind: "status" (forced logout only) or "details" (new password issued)
var LoginResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_resets_total",
		Help:      "Total number of administrative login resets, by kind.",
	},
	[]string{"kind"},
)

// ImportRowsTotal counts bulk-import row outcomes.
// Label:
//   - result: "imported", "skipped" (filtered out), or "failed" (store error)
var ImportRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Total number of bulk-import rows processed, by result.",
	},
	[]string{"result"},
)

// NotificationsTotal counts access-granted notification outcomes as seen by
// the directory core.
// Label:
//   - result: "dispatched" or "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of access-granted notifications dispatched, by result.",
	},
	[]string{"result"},
)

// NotificationDeliveriesTotal counts delivery attempts made by the async
// notification dispatcher.
// Label:
//   - result: "sent", "deduplicated", or "error"
var NotificationDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_deliveries_total",
		Help:      "Total number of notification delivery attempts, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending notifications per dispatcher worker.
// Label:
//   - worker_id: numeric worker index ("0", "1", ...)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
