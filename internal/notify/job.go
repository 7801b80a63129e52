package notify

import "github.com/fieldserve/helpdesk-service/internal/domain"

// Job is one unit of post-commit notification work. The workflow engine
// builds a Job only after its transaction commits; whatever happens to the
// job afterwards cannot affect the outcome of the transition that caused it.
type Job struct {
	ID         string
	Recipients []string
	Type       domain.NotificationType
	Title      string
	Message    string
	Data       map[string]any
}
