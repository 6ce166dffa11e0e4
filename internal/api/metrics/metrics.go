// Package metrics defines and registers all custom Prometheus metrics for
// the catalog API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init;
// the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Authentication metrics ────────────────────────────────────────────────────

// TokensIssuedTotal counts successfully issued bearer tokens.
// Label:
//   - role: the subject's role at issuance ("reader" or "writer")
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued, by subject role.",
	},
	[]string{"role"},
)

// AuthFailuresTotal counts requests refused at the authentication gate.
// Label:
//   - reason: "missing" (no Authorization header), "scheme" (not Bearer),
//     or "invalid" (malformed, tampered or expired token)
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests refused with 401, by reason.",
	},
	[]string{"reason"},
)

// ── Conditional-request metrics ───────────────────────────────────────────────

// PreconditionFailuresTotal counts mutations refused by the ETag protocol.
// Label:
//   - outcome: "required" (no If-Match supplied) or "failed" (stale tag)
var PreconditionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "precondition_failures_total",
		Help:      "Total number of mutations refused by conditional-request evaluation.",
	},
	[]string{"outcome"},
)

// NotModifiedTotal counts reads answered with 304 from a matching If-None-Match.
var NotModifiedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "not_modified_total",
		Help:      "Total number of reads answered with 304 Not Modified.",
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ElementsCreatedTotal counts created catalog elements.
// Label:
//   - kind: "person", "entity" or "product"
var ElementsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "elements_created_total",
		Help:      "Total number of catalog elements created, by kind.",
	},
	[]string{"kind"},
)

// RelationChangesTotal counts relationship-edge mutations that changed the
// graph (idempotent re-links and no-op unlinks are not counted).
// Labels:
//   - op: "link" or "unlink"
//   - kinds: the canonical kind pair, e.g. "person-entity"
var RelationChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relation_changes_total",
		Help:      "Total number of relationship edges added or removed.",
	},
	[]string{"op", "kinds"},
)
