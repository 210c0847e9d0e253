package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Letter generation events
	EventLetterGenerated  = "letter.generated"
	EventLetterDownloaded = "letter.downloaded"
	EventLetterDeleted    = "letter.deleted"
	EventBulkCompleted    = "letter.bulk_completed"

	// Template lifecycle events
	EventTemplateCreated = "template.created"
	EventTemplateUpdated = "template.updated"
	EventTemplateDeleted = "template.deleted"
)

// Exchange names
const (
	ExchangeLetterEvents = "letters.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// GenerateEventID returns a unique event identifier
func GenerateEventID() string {
	return uuid.New().String()
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// LetterGeneratedEvent is published when a single letter is generated
type LetterGeneratedEvent struct {
	LetterID   string `json:"letter_id"`
	TemplateID string `json:"template_id"`
	ClientID   string `json:"client_id"`
	ServiceID  string `json:"service_id,omitempty"`
	UserID     string `json:"user_id"`
	Format     string `json:"format"`
}

// LetterDownloadedEvent is published when a generated letter is downloaded
type LetterDownloadedEvent struct {
	LetterID      string `json:"letter_id"`
	UserID        string `json:"user_id"`
	DownloadCount int    `json:"download_count"`
}

// TemplateChangedEvent is published on template create/update/delete
type TemplateChangedEvent struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	UserID     string `json:"user_id"`
}

// BulkCompletedEvent is published when a bulk generation run finishes
type BulkCompletedEvent struct {
	TemplateID     string `json:"template_id"`
	UserID         string `json:"user_id"`
	TotalRequested int    `json:"total_requested"`
	SuccessCount   int    `json:"success_count"`
	FailureCount   int    `json:"failure_count"`
	ZipFileID      string `json:"zip_file_id,omitempty"`
}
