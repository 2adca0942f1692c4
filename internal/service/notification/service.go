package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/notification"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/sse"
)

const (
	queueSize     = 256
	batchSize     = 32
	flushInterval = 2 * time.Second
)

// NotificationServiceImpl queues notifications and writes them in batches.
// When the queue is full the write falls through to a direct insert so no
// notification is ever dropped.
type NotificationServiceImpl struct {
	repo   notification.Repository
	hub    *sse.Hub
	clk    clock.Clock
	queue  chan *notification.Notification
	done   chan struct{}
	wg     sync.WaitGroup
	stopMu sync.Mutex
	closed bool
}

func NewNotificationService(repo notification.Repository, hub *sse.Hub, clk clock.Clock) notification.Service {
	s := &NotificationServiceImpl{
		repo:  repo,
		hub:   hub,
		clk:   clk,
		queue: make(chan *notification.Notification, queueSize),
		done:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *NotificationServiceImpl) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := make([]*notification.Notification, 0, batchSize)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.repo.CreateBatch(ctx, pending); err != nil {
			slog.Error("Failed to flush notification batch", "count", len(pending), "error", err)
		}
		cancel()
		pending = pending[:0]
	}

	for {
		select {
		case n := <-s.queue:
			pending = append(pending, n)
			if len(pending) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case n := <-s.queue:
					pending = append(pending, n)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Notify implements notification.Service. The priority is fixed by the type;
// callers cannot choose it.
func (s *NotificationServiceImpl) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := &notification.Notification{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		Message:    req.Message,
		Priority:   notification.PriorityFor(req.Type),
		IsRead:     false,
		CreatedAt:  s.clk.Now().UTC(),
	}

	select {
	case s.queue <- n:
	default:
		// Queue full; insert directly rather than dropping.
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
	}

	if s.hub != nil {
		s.hub.Publish(n.EmployeeID, sse.Event{
			EmployeeID: n.EmployeeID,
			Event:      "notification",
			Data:       toResponse(n),
		})
	}

	return nil
}

// GetNotifications implements notification.Service.
func (s *NotificationServiceImpl) GetNotifications(ctx context.Context, employeeID string, unreadOnly bool) (*notification.NotificationListResponse, error) {
	ns, err := s.repo.ListByEmployee(ctx, employeeID, unreadOnly)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.UnreadCount(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, 0, len(ns))
	for _, n := range ns {
		responses = append(responses, toResponse(n))
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		UnreadCount:   unread,
	}, nil
}

// MarkAsRead implements notification.Service. Marking an already-read
// notification succeeds without touching it.
func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string) error {
	exists, err := s.repo.MarkAsRead(ctx, id, s.clk.Now().UTC())
	if err != nil {
		return err
	}
	if !exists {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead implements notification.Service.
func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, employeeID string) error {
	return s.repo.MarkAllAsRead(ctx, employeeID, s.clk.Now().UTC())
}

// Subscribe implements notification.Service, bridging the hub's channel into
// typed events. The bridge goroutine exits when the hub closes the channel or
// the context ends.
func (s *NotificationServiceImpl) Subscribe(ctx context.Context, employeeID string) (<-chan notification.SSEEvent, func()) {
	raw, cleanup := s.hub.Subscribe(employeeID)
	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-raw:
				if !ok {
					return
				}
				data, ok := ev.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: ev.Event, Data: data}:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop implements notification.Service. Safe to call more than once.
func (s *NotificationServiceImpl) Stop() {
	s.stopMu.Lock()
	if s.closed {
		s.stopMu.Unlock()
		return
	}
	s.closed = true
	s.stopMu.Unlock()

	close(s.done)
	s.wg.Wait()
}

func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:         n.ID,
		EmployeeID: n.EmployeeID,
		Type:       n.Type,
		Message:    n.Message,
		Priority:   n.Priority,
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}
