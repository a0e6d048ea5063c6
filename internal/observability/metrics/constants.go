// Package metrics provides the Prometheus collectors used by xpic.
package metrics

// Label values shared by the collectors.
const (
	SourceMirror = "mirror"
	SourceAPI    = "api"

	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"

	RefreshUpdated   = "updated"
	RefreshUnchanged = "unchanged"
	RefreshCanceled  = "canceled"
)
