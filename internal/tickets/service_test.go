package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/upteky/upteky-central/internal/tasks"
)

type memoryTicketRepo struct {
	tickets map[string]Ticket
	replies []Reply
	tasks   []tasks.Task
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[string]Ticket)}
}

func (r *memoryTicketRepo) ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryTicketRepo) GetTicket(ctx context.Context, id string) (Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return t, nil
}

func (r *memoryTicketRepo) ListReplies(ctx context.Context, ticketID string) ([]Reply, error) {
	var out []Reply
	for _, rep := range r.replies {
		if rep.TicketID == ticketID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) InsertReply(ctx context.Context, reply Reply) error {
	r.replies = append(r.replies, reply)
	return nil
}

func (r *memoryTicketRepo) WithTx(ctx context.Context, fn func(TxRepository) error) error {
	return fn(&memoryTicketTx{repo: r})
}

type memoryTicketTx struct {
	repo *memoryTicketRepo
}

func (t *memoryTicketTx) GetTicketForUpdate(ctx context.Context, id string) (Ticket, error) {
	return t.repo.GetTicket(ctx, id)
}

func (t *memoryTicketTx) InsertTask(ctx context.Context, task tasks.Task) error {
	t.repo.tasks = append(t.repo.tasks, task)
	return nil
}

func (t *memoryTicketTx) SetLinkedTask(ctx context.Context, ticketID, taskID, status string) error {
	ticket, ok := t.repo.tickets[ticketID]
	if !ok {
		return ErrTicketNotFound
	}
	ticket.LinkedTaskID = &taskID
	ticket.Status = status
	t.repo.tickets[ticketID] = ticket
	return nil
}

func (t *memoryTicketTx) InsertReply(ctx context.Context, reply Reply) error {
	return t.repo.InsertReply(ctx, reply)
}

type staticDirectory struct{}

func (staticDirectory) UserName(ctx context.Context, userID string) (string, error) {
	return "Jane Mathews", nil
}

func newTestTicketService(repo Repository) *Service {
	return NewService(repo, staticDirectory{}, slog.Default())
}

func TestConvertToTask(t *testing.T) {
	repo := newMemoryTicketRepo()
	assignee := "user-emp-jane"
	repo.tickets["ticket-1"] = Ticket{
		ID:          "ticket-1",
		Subject:     "CRM sync fails",
		Description: "Leads are not syncing.",
		Status:      StatusOpen,
		Priority:    "High",
		AssigneeID:  &assignee,
	}

	service := newTestTicketService(repo)
	converted := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return converted }

	task, err := service.ConvertToTask(context.Background(), "ticket-1")
	require.NoError(t, err)

	require.Equal(t, tasks.StatusToDo, task.Status)
	require.Equal(t, tasks.PriorityMedium, task.Priority)
	require.Zero(t, task.Progress)
	require.Equal(t, "Leads are not syncing.", task.Description)
	require.NotNil(t, task.AssigneeID)
	require.Equal(t, assignee, *task.AssigneeID)
	require.NotNil(t, task.LinkedTicketID)
	require.Equal(t, "ticket-1", *task.LinkedTicketID)

	ticket := repo.tickets["ticket-1"]
	require.NotNil(t, ticket.LinkedTaskID)
	require.Equal(t, task.ID, *ticket.LinkedTaskID)
	require.Equal(t, StatusInProgress, ticket.Status)

	require.Len(t, repo.replies, 1)
	reply := repo.replies[0]
	require.Equal(t, systemAuthorID, reply.AuthorID)
	require.Equal(t, systemAuthorName, reply.AuthorName)
	require.Equal(t, fmt.Sprintf("This ticket has been converted to Task #%d.", converted.Unix()), reply.Message)
	require.True(t, reply.IsInternalNote)
}

func TestConvertToTaskTwiceFails(t *testing.T) {
	repo := newMemoryTicketRepo()
	repo.tickets["ticket-1"] = Ticket{ID: "ticket-1", Subject: "Subject", Status: StatusOpen}

	service := newTestTicketService(repo)

	_, err := service.ConvertToTask(context.Background(), "ticket-1")
	require.NoError(t, err)

	_, err = service.ConvertToTask(context.Background(), "ticket-1")
	require.ErrorIs(t, err, ErrAlreadyConverted)
	require.Len(t, repo.tasks, 1)
	require.Len(t, repo.replies, 1)
}

func TestConvertToTaskMissingTicket(t *testing.T) {
	service := newTestTicketService(newMemoryTicketRepo())

	_, err := service.ConvertToTask(context.Background(), "ticket-missing")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAddReplyResolvesAuthorName(t *testing.T) {
	repo := newMemoryTicketRepo()
	repo.tickets["ticket-1"] = Ticket{ID: "ticket-1", Status: StatusOpen}

	service := newTestTicketService(repo)

	reply, err := service.AddReply(context.Background(), "ticket-1", "user-emp-jane", "Looking into this.", false)
	require.NoError(t, err)
	require.Equal(t, "Jane Mathews", reply.AuthorName)
	require.Equal(t, "user-emp-jane", reply.AuthorID)
	require.False(t, reply.IsInternalNote)
	require.Len(t, repo.replies, 1)
}

func TestAddReplyInternalNote(t *testing.T) {
	repo := newMemoryTicketRepo()
	repo.tickets["ticket-1"] = Ticket{ID: "ticket-1", Status: StatusOpen}

	service := newTestTicketService(repo)

	reply, err := service.AddReply(context.Background(), "ticket-1", "user-lead-arjun", "Escalating to platform.", true)
	require.NoError(t, err)
	require.True(t, reply.IsInternalNote)
	require.True(t, repo.replies[0].IsInternalNote)
}
