package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/upteky/upteky-central/internal/tasks"
)

// Replies created by the conversion workflow are attributed to the
// system author, not the actor who triggered the conversion.
const (
	systemAuthorID   = "system-process-id"
	systemAuthorName = "Upteky Central System"
)

// Directory resolves display names for reply authors.
type Directory interface {
	UserName(ctx context.Context, userID string) (string, error)
}

// Service handles ticket workflows.
type Service struct {
	repo      Repository
	directory Directory
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, directory Directory, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, logger: logger, now: time.Now}
}

// ListTickets returns tickets matching the filter.
func (s *Service) ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	return s.repo.ListTickets(ctx, filter)
}

// GetTicket fetches a single ticket.
func (s *Service) GetTicket(ctx context.Context, id string) (Ticket, error) {
	return s.repo.GetTicket(ctx, id)
}

// ListReplies returns the reply thread for a ticket, oldest first.
func (s *Service) ListReplies(ctx context.Context, ticketID string) ([]Reply, error) {
	if _, err := s.repo.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListReplies(ctx, ticketID)
}

// AddReply appends a reply authored by the given user. Internal notes
// carry the flag through so staff-only threads stay distinguishable
// from client-visible ones.
func (s *Service) AddReply(ctx context.Context, ticketID, authorID, message string, isInternalNote bool) (Reply, error) {
	if _, err := s.repo.GetTicket(ctx, ticketID); err != nil {
		return Reply{}, err
	}
	authorName, err := s.directory.UserName(ctx, authorID)
	if err != nil {
		s.logger.Warn("resolve reply author", slog.String("user_id", authorID), slog.Any("error", err))
		authorName = authorID
	}
	reply := Reply{
		ID:             uuid.NewString(),
		TicketID:       ticketID,
		AuthorID:       authorID,
		AuthorName:     authorName,
		Message:        message,
		IsInternalNote: isInternalNote,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertReply(ctx, reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// ConvertToTask turns an open ticket into a task. The new task, the
// ticket's linked_task_id and a system reply are written in one
// transaction; a ticket that already carries a linked task fails with
// ErrAlreadyConverted and no second task is created. The row lock taken
// by GetTicketForUpdate serialises concurrent conversions of the same
// ticket, so exactly one caller wins.
func (s *Service) ConvertToTask(ctx context.Context, ticketID string) (tasks.Task, error) {
	var created tasks.Task
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		ticket, err := tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.LinkedTaskID != nil {
			return ErrAlreadyConverted
		}

		now := s.now()
		taskNumber := now.Unix()
		created = tasks.Task{
			ID:             uuid.NewString(),
			Title:          fmt.Sprintf("Task #%d: %s", taskNumber, ticket.Subject),
			Description:    ticket.Description,
			Status:         tasks.StatusToDo,
			Priority:       tasks.PriorityMedium,
			Progress:       0,
			AssigneeID:     ticket.AssigneeID,
			LinkedTicketID: &ticket.ID,
			CreatedAt:      now,
		}
		if err := tx.InsertTask(ctx, created); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		if err := tx.SetLinkedTask(ctx, ticket.ID, created.ID, StatusInProgress); err != nil {
			return fmt.Errorf("link ticket: %w", err)
		}
		reply := Reply{
			ID:             uuid.NewString(),
			TicketID:       ticket.ID,
			AuthorID:       systemAuthorID,
			AuthorName:     systemAuthorName,
			Message:        fmt.Sprintf("This ticket has been converted to Task #%d.", taskNumber),
			IsInternalNote: true,
			CreatedAt:      now,
		}
		if err := tx.InsertReply(ctx, reply); err != nil {
			return fmt.Errorf("insert system reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return tasks.Task{}, err
	}
	s.logger.Info("ticket converted to task",
		slog.String("ticket_id", ticketID),
		slog.String("task_id", created.ID))
	return created, nil
}
