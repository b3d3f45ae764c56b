// Package notify delivers DonationConfirmed events to the notification subsystem.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
)

// EventDonationConfirmed is the event name downstream consumers (receipt email, CRM) subscribe to.
const EventDonationConfirmed = "donation_confirmed"

const anonymousDistinctID = "anonymous-donor"

// eventQueue is satisfied by utils.PosthogClientWrapper.
type eventQueue interface {
	Enqueue(distinctId string, event string, properties map[string]any) error
}

// PosthogSink publishes donation events to PostHog, where the email workflows pick them up.
type PosthogSink struct {
	queue eventQueue
}

func NewPosthogSink(client *utils.PosthogClientWrapper) *PosthogSink {
	return &PosthogSink{queue: client}
}

func (p *PosthogSink) DonationConfirmed(ctx context.Context, event domain.DonationConfirmedEvent) error {
	distinctID := anonymousDistinctID
	if event.DonorID != nil {
		distinctID = *event.DonorID
	}
	props := map[string]any{
		"donationId":  event.DonationID,
		"amount":      utils.FormatAmount(event.Amount),
		"currency":    event.Currency,
		"recipientId": event.RecipientID,
		"isAnonymous": event.IsAnonymous,
		// PostHog deduplicates on $insert_id, so a retried enqueue cannot double-send.
		"$insert_id": event.DonationID,
	}
	if event.DonorID != nil {
		props["donorId"] = *event.DonorID
	}
	return p.queue.Enqueue(distinctID, EventDonationConfirmed, props)
}

// LogSink writes events to the structured log. It is always on, so every emitted event leaves a
// trace even when PostHog is not configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) DonationConfirmed(ctx context.Context, event domain.DonationConfirmedEvent) error {
	attrs := []any{
		slog.String("event", EventDonationConfirmed),
		slog.String("donation_id", event.DonationID),
		slog.String("amount", utils.FormatAmount(event.Amount)),
		slog.String("currency", event.Currency),
		slog.String("recipient_id", event.RecipientID),
		slog.Bool("is_anonymous", event.IsAnonymous),
	}
	if event.DonorID != nil {
		attrs = append(attrs, slog.String("donor_id", *event.DonorID))
	}
	l.logger.InfoContext(ctx, "Donation confirmed", attrs...)
	return nil
}

// Dispatcher fans one event out to every sink. A failing sink does not stop the others.
type Dispatcher struct {
	sinks []portssvc.NotificationDispatcher
}

func NewDispatcher(sinks ...portssvc.NotificationDispatcher) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

var _ portssvc.NotificationDispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) DonationConfirmed(ctx context.Context, event domain.DonationConfirmedEvent) error {
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.DonationConfirmed(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
