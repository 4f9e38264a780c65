package dispatch

// =====================================================
// Progress Events and Run Report
// =====================================================

// EventType names the stages of a dispatch run.
type EventType string

const (
	EventStarted       EventType = "start"
	EventItemCompleted EventType = "progress"
	EventFinished      EventType = "complete"
	EventAborted       EventType = "error"
)

// Status marks the outcome of one delivery attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome records what happened for one recipient.
type Outcome struct {
	Email     string `json:"email"`
	Status    Status `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report is the final tally of a run, in recipient order.
type Report struct {
	RunID      string    `json:"runId"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"details"`
}

// Event is one progress notification. Which fields are populated depends on
// Type: Started carries Total; ItemCompleted carries the per-item fields and
// running tallies; Finished carries the final tallies and outcomes; Aborted
// carries Error.
type Event struct {
	RunID      string    `json:"runId"`
	Type       EventType `json:"type"`
	Total      int       `json:"total"`
	Current    int       `json:"current"`
	Email      string    `json:"email,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	Outcomes   []Outcome `json:"details,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Publisher receives dispatch events. Implementations must not block; slow
// consumers drop events rather than stall the send loop.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
