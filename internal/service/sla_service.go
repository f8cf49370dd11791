package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/events"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

// SLAService finds tickets past their SLA due time and raises breach
// events. A breach is reported once per ticket per process lifetime.
type SLAService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	notified map[string]struct{}
}

// NewSLAService constructs the service.
func NewSLAService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SLAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		notified:   make(map[string]struct{}),
	}
}

// ScanOnce checks all unresolved tickets against the clock and reports
// the number of new breaches found.
func (s *SLAService) ScanOnce(ctx context.Context, now time.Time) (int, error) {
	filter := repository.TicketFilter{
		Statuses: []domain.TicketStatus{
			domain.TicketStatusOpen,
			domain.TicketStatusTriaged,
			domain.TicketStatusWaitingHuman,
		},
		DueBefore: &now,
		Limit:     500,
	}
	overdue, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return 0, err
	}

	breaches := 0
	for i := range overdue {
		ticket := &overdue[i]
		if ticket.DueAt == nil {
			continue
		}
		s.mu.Lock()
		_, seen := s.notified[ticket.ID]
		if !seen {
			s.notified[ticket.ID] = struct{}{}
		}
		s.mu.Unlock()
		if seen {
			continue
		}

		breaches++
		s.logger.Warn("sla breached",
			zap.String("ticket_id", ticket.ID),
			zap.String("status", string(ticket.Status)),
			zap.Time("due_at", *ticket.DueAt),
		)
		if s.dispatcher != nil {
			_ = s.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventSLABreached,
				TicketID:  ticket.ID,
				Timestamp: now,
				Payload: events.SLABreachedPayload{
					Status:  ticket.Status,
					DueAt:   *ticket.DueAt,
					Overdue: now.Sub(*ticket.DueAt),
				},
			})
		}
	}
	return breaches, nil
}
