package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// JobAction names the mutation a JobEvent reports.
type JobAction string

const (
	JobCreated JobAction = "created"
	JobUpdated JobAction = "updated"
	JobDeleted JobAction = "deleted"
)

func (a JobAction) Valid() bool {
	switch a {
	case JobCreated, JobUpdated, JobDeleted:
		return true
	}
	return false
}

// JobEvent is a lightweight notification that a job changed. Consumers
// fetch the job itself from the store.
type JobEvent struct {
	JobID     uuid.UUID `json:"job_id"`
	Action    JobAction `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewJobEvent(id uuid.UUID, action JobAction) *JobEvent {
	return &JobEvent{
		JobID:     id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *JobEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func JobEventFromJSON(data []byte) (*JobEvent, error) {
	var msg JobEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Action.Valid() {
		return nil, fmt.Errorf("unknown job action %q", msg.Action)
	}
	return &msg, nil
}
