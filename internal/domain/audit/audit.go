package audit

import (
	"errors"
	"time"
)

// Category groups audit events by what they touched.
type Category string

const (
	CategoryBooking  Category = "booking"
	CategoryAccount  Category = "account"
	CategoryOutbox   Category = "outbox"
	CategorySecurity Category = "security"
)

// Action is what the actor did.
type Action string

const (
	ActionCreate      Action = "create"
	ActionConfirm     Action = "confirm"
	ActionCancel      Action = "cancel"
	ActionDelete      Action = "delete"
	ActionRetry       Action = "retry"
	ActionAbandon     Action = "abandon"
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
)

// Severity is how closely an admin should look at the event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var (
	ErrEmptyID       = errors.New("audit event ID cannot be empty")
	ErrEmptyCategory = errors.New("audit category cannot be empty")
	ErrEmptyAction   = errors.New("audit action cannot be empty")
	ErrZeroTimestamp = errors.New("audit timestamp must be set")
)

// Event is one entry in the admin activity trail.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ActorRole    string    `json:"actor_role"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
}

// NewEvent starts an info-level event for an actor.
// PRE: id is unique; at is the time the action completed
// POST: Returns an Event with the resource and description unset
func NewEvent(id string, at time.Time, actorID, actorEmail, actorRole string, category Category, action Action) Event {
	return Event{
		ID:         id,
		Timestamp:  at,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource names what the action touched, e.g. ("booking", id).
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the human-readable summary.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithIP records the client address the request came from.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}

// Validate checks the fields every stored event needs.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Category == "" {
		return ErrEmptyCategory
	}
	if e.Action == "" {
		return ErrEmptyAction
	}
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}
