// Package metrics defines and registers the custom Prometheus metrics for the
// community portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; /metrics exposes them alongside the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "community"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests rejected by the access guard.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of operations rejected by the access guard.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEntriesTotal counts entries appended to the audit log.
// Label:
//   - action: the action tag (e.g. "เพิ่มผู้ใช้")
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit log entries appended, by action.",
	},
	[]string{"action"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StorageErrorsTotal counts storage failures.
// Labels:
//   - resource: "users", "announcements" or "logs"
//   - op: "read_corrupt", "read_failed" or "write_failed"
var StorageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_errors_total",
		Help:      "Total number of record store failures, by resource and operation.",
	},
	[]string{"resource", "op"},
)

// StorageWriteDuration measures how long a file store Save or Update takes,
// from the call until the resource's writer has finished the job.
// Label:
//   - resource: "users", "announcements" or "logs"
var StorageWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storage_write_duration_seconds",
		Help:      "Duration of record store writes.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)
