// Package health models the shared multi-service health document consumed
// by external monitoring tooling.
package health

// Status represents a service health classification.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// rank orders statuses from best to worst for overall-status computation.
func (s Status) rank() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worst returns the worst status among the given statuses
// (error > warning > healthy). With no input it returns healthy.
func Worst(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s.rank() > worst.rank() {
			worst = s
		}
	}
	return worst
}

// warningLimit is the inconsistency count above which a service is
// classified as error rather than warning.
const warningLimit = 3

// Classify maps a pipeline outcome to a health status: no inconsistencies
// is healthy, one to three is warning, more than three or any pipeline
// failure is error.
func Classify(inconsistencies int, failed bool) Status {
	switch {
	case failed:
		return StatusError
	case inconsistencies == 0:
		return StatusHealthy
	case inconsistencies <= warningLimit:
		return StatusWarning
	default:
		return StatusError
	}
}

// Service is one named entry in the shared health document.
type Service struct {
	Service   string         `json:"service"`
	Status    Status         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details"`
	Metrics   map[string]any `json:"metrics"`
	Alerts    []string       `json:"alerts"`
}
