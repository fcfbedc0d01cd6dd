package nats

import (
	"time"

	"github.com/google/uuid"
)

// Stream names.
const StreamEvents = "TASKWEAVE_EVENTS"

// Subject constants.
const SubjectProjectGenerated = "taskweave.events.project.generated"

// ProjectGeneratedEvent is published after an AI-generated project has been
// persisted, so the rest of the tracker can react without polling.
type ProjectGeneratedEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at"`
}
