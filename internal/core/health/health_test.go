package health

import "testing"

func TestWorst(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty defaults to healthy", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"warning beats healthy", []Status{StatusHealthy, StatusWarning}, StatusWarning},
		{"error beats warning", []Status{StatusWarning, StatusError, StatusHealthy}, StatusError},
		{"unknown counts as healthy", []Status{StatusUnknown, StatusWarning}, StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.statuses...); got != tt.want {
				t.Errorf("Worst(%v) = %q, want %q", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		inconsistencies int
		failed          bool
		want            Status
	}{
		{"clean", 0, false, StatusHealthy},
		{"one inconsistency", 1, false, StatusWarning},
		{"three inconsistencies", 3, false, StatusWarning},
		{"four inconsistencies", 4, false, StatusError},
		{"pipeline failure", 0, true, StatusError},
		{"failure trumps count", 2, true, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.inconsistencies, tt.failed); got != tt.want {
				t.Errorf("Classify(%d, %v) = %q, want %q", tt.inconsistencies, tt.failed, got, tt.want)
			}
		})
	}
}
