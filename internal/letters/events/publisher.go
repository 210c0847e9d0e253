package events

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/logger"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/messaging"
)

// Sink is the event transport. The audit sink is fire-and-forget: publish
// failures are logged by the publisher, never returned to the pipeline.
type Sink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// LetterEventPublisher publishes letter audit events
type LetterEventPublisher struct {
	sink   Sink
	logger *logger.Logger
}

// NewLetterEventPublisher creates a publisher bound to the letters exchange
func NewLetterEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*LetterEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeLetterEvents, "letter-service", log)
	if err != nil {
		return nil, err
	}
	return &LetterEventPublisher{sink: publisher, logger: log}, nil
}

// NewWithSink creates a publisher over an arbitrary sink, used in tests
func NewWithSink(sink Sink, log *logger.Logger) *LetterEventPublisher {
	return &LetterEventPublisher{sink: sink, logger: log}
}

// PublishLetterGenerated publishes a letter generated event
func (p *LetterEventPublisher) PublishLetterGenerated(ctx context.Context, letter *domain.GeneratedLetter) {
	serviceID := ""
	if letter.ServiceID != nil {
		serviceID = *letter.ServiceID
	}

	data := messaging.LetterGeneratedEvent{
		LetterID:   letter.ID,
		TemplateID: letter.TemplateID,
		ClientID:   letter.ClientID,
		ServiceID:  serviceID,
		UserID:     letter.GeneratedBy,
		Format:     letter.Format,
	}

	if err := p.sink.Publish(ctx, messaging.EventLetterGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("letter_id", letter.ID).Msg("failed to publish letter generated event")
	}
}

// PublishLetterDownloaded publishes a letter downloaded event
func (p *LetterEventPublisher) PublishLetterDownloaded(ctx context.Context, letterID, userID string, downloadCount int) {
	data := messaging.LetterDownloadedEvent{
		LetterID:      letterID,
		UserID:        userID,
		DownloadCount: downloadCount,
	}

	if err := p.sink.Publish(ctx, messaging.EventLetterDownloaded, data); err != nil {
		p.logger.Error().Err(err).Str("letter_id", letterID).Msg("failed to publish letter downloaded event")
	}
}

// PublishBulkCompleted publishes a bulk run completion event
func (p *LetterEventPublisher) PublishBulkCompleted(ctx context.Context, templateID, userID string, result *domain.BulkGenerationResult) {
	data := messaging.BulkCompletedEvent{
		TemplateID:     templateID,
		UserID:         userID,
		TotalRequested: result.TotalRequested,
		SuccessCount:   result.SuccessCount,
		FailureCount:   result.FailureCount,
		ZipFileID:      result.ZipFileID,
	}

	if err := p.sink.Publish(ctx, messaging.EventBulkCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("template_id", templateID).Msg("failed to publish bulk completed event")
	}
}

// PublishTemplateChanged publishes a template lifecycle event
func (p *LetterEventPublisher) PublishTemplateChanged(ctx context.Context, eventType string, tpl *domain.Template, userID string) {
	data := messaging.TemplateChangedEvent{
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		Version:    tpl.Version,
		UserID:     userID,
	}

	if err := p.sink.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("template_id", tpl.ID).Msg("failed to publish template event")
	}
}
