// Package metrics defines and registers all custom Prometheus metrics of the
// back-office API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientMutationsTotal counts client writes.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "ok", "in_flight", "invalid", "not_found", "conflict" or "error"
var ClientMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_mutations_total",
		Help:      "Total number of client mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ClientCacheTotal counts list cache lookups.
// Label:
//   - result: "hit", "miss", "bypass" (cache marked dirty after a failed invalidation)
//     or "stale_fill" (a write landed while the list was being read)
var ClientCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_cache_total",
		Help:      "Total number of client list cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// SecretRevealsTotal counts credential values shown in plaintext.
// Label:
//   - field: the revealed field (e.g. "mot_de_passe_dgi")
var SecretRevealsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "secret_reveals_total",
		Help:      "Total number of secret fields revealed, by field.",
	},
	[]string{"field"},
)

// AuthzDenialsTotal counts requests refused by the permission middleware.
// Label:
//   - permission: "entity:action" (e.g. "client:delete")
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by role, by permission.",
	},
	[]string{"permission"},
)

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "ok", "invalid_credentials", "inactive" or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notifications handed to the dispatcher.
// Labels:
//   - kind: "success", "error" or "info"
//   - result: "published", "failed" or "dropped" (worker queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, by kind and delivery result.",
	},
	[]string{"kind", "result"},
)

// NotificationsQueueDepth tracks the notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationPublishDuration measures how long publishing one notification takes.
var NotificationPublishDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_publish_duration_seconds",
		Help:      "Duration of a single notification publish.",
		Buckets:   prometheus.DefBuckets,
	},
)
