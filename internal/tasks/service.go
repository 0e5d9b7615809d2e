package tasks

import "context"

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	ListTasks(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
}

// Service handles task listing.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListTasks returns all tasks.
func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	return s.repo.ListTasks(ctx)
}

// GetTask fetches a single task.
func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	return s.repo.GetTask(ctx, id)
}
