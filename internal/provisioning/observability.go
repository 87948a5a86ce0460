package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer is the structured observability surface shared by
// provisioning and cleanup.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)

	// Progress reports progress for a long-running step.
	Progress(step string, current, total int)
}

// Event represents a lifecycle event worth reporting to the operator.
type Event struct {
	Type      EventType
	Step      string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies lifecycle events.
type EventType string

const (
	// EventStepStarted indicates a lifecycle step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a lifecycle step completed.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a lifecycle step failed.
	EventStepFailed EventType = "step.failed"

	// EventResourceCreating indicates a resource create call was issued.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource reached a ready status.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource was already present and ready.
	EventResourceExists EventType = "resource.exists"
	// EventResourcePolling indicates a readiness poll observation.
	EventResourcePolling EventType = "resource.polling"
	// EventResourceDeleting indicates a resource delete call was issued.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource delete was confirmed.
	EventResourceDeleted EventType = "resource.deleted"
)

// ConsoleObserver implements Observer on the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	log.Print(formatEvent(event))
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(step string, current, total int) {
	if total == 0 {
		log.Printf("[%s] progress: %d", step, current)
		return
	}
	log.Printf("[%s] progress: %d/%d (%d%%)", step, current, total, (current*100)/total)
}

func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Step != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Step))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		fieldParts := make([]string, 0, len(event.Fields))
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}
