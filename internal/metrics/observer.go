package metrics

import (
	"io"
	"os"
	"strconv"
	"time"
)

// RequestStats describes one completed gateway request.
type RequestStats struct {
	RequestID string
	Step      string
	Status    int
	// ErrorType is empty on success.
	ErrorType string
	Duration  time.Duration
}

// Observer receives the stats of every completed request.
type Observer interface {
	ObserveRequest(RequestStats)
}

// Nop discards all observations.
type Nop struct{}

// ObserveRequest implements Observer.
func (Nop) ObserveRequest(RequestStats) {}

// EMFObserver emits one EMF line per request.
type EMFObserver struct {
	namespace    string
	functionName string
	out          io.Writer
}

// NewEMFObserver creates an observer writing EMF to stdout under namespace.
func NewEMFObserver(namespace string) *EMFObserver {
	return &EMFObserver{
		namespace:    namespace,
		functionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		out:          os.Stdout,
	}
}

// ObserveRequest implements Observer.
func (o *EMFObserver) ObserveRequest(s RequestStats) {
	errorType := s.ErrorType
	if errorType == "" {
		errorType = "none"
	}
	rec := newRecorder(o.out, o.namespace, o.functionName).
		Dimension("Step", s.Step).
		Dimension("Status", strconv.Itoa(s.Status)).
		Dimension("ErrorType", errorType).
		Metric("RequestLatencyMs", float64(s.Duration.Milliseconds()), UnitMilliseconds).
		Count("RequestCount")
	if s.RequestID != "" {
		rec.Property("requestId", s.RequestID)
	}
	rec.Flush()
}
