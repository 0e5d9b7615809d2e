package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/shared"
)

// ApprovalSink records review decisions and serves their history.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
	List(ctx context.Context, module, refID string) ([]shared.ApprovalLog, error)
}

const approvalModule = "attendance.overtime"

// Service handles attendance listings and the overtime review
// transition.
type Service struct {
	repo      RepositoryPort
	gate      *authz.Gate
	resolver  authz.ReportsResolver
	approvals ApprovalSink
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds Service instance. approvals may be nil.
func NewService(repo RepositoryPort, gate *authz.Gate, resolver authz.ReportsResolver, approvals ApprovalSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, gate: gate, resolver: resolver, approvals: approvals, logger: logger, now: time.Now}
}

// ListVisible returns the records the actor may read, in stored order.
// Scope rules mirror the timesheet visibility contract.
func (s *Service) ListVisible(ctx context.Context, actor authz.Actor) ([]Record, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case authz.RoleAdmin, authz.RoleHR:
		return records, nil
	case authz.RoleTeamLead:
		reports, err := s.resolver.Reports(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		out := make([]Record, 0, len(records))
		for _, rec := range records {
			if rec.UserID == actor.UserID {
				out = append(out, rec)
				continue
			}
			if _, ok := reports[rec.UserID]; ok {
				out = append(out, rec)
			}
		}
		return out, nil
	default:
		out := make([]Record, 0, len(records))
		for _, rec := range records {
			if rec.UserID == actor.UserID {
				out = append(out, rec)
			}
		}
		return out, nil
	}
}

// ReviewOvertime reviews a pending overtime request. Exactly one of two
// concurrent reviews succeeds; the loser observes the record's actual
// state. Approval grants the record's full potential hours; rejection
// grants zero.
func (s *Service) ReviewOvertime(ctx context.Context, actor authz.Actor, recordID string, decision ReviewDecision, comment string) (Record, error) {
	if !decision.Valid() {
		return Record{}, ErrInvalidDecision
	}

	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	if err := s.authorizeReview(ctx, actor, rec); err != nil {
		return Record{}, err
	}

	update := ReviewUpdate{
		RecordID:   recordID,
		Decision:   decision,
		ReviewerID: actor.UserID,
		ReviewedAt: s.now(),
	}
	if comment != "" {
		update.Comment = &comment
	}

	updated, err := s.repo.ReviewOvertime(ctx, update)
	if err != nil {
		if errors.Is(err, errNotPending) {
			// Lost the race or the record was never pending; re-read for
			// the precise failure.
			current, readErr := s.repo.GetRecord(ctx, recordID)
			if readErr != nil {
				return Record{}, readErr
			}
			return Record{}, &InvalidStateError{Status: current.OvertimeApprovalStatus}
		}
		return Record{}, err
	}

	if s.approvals != nil {
		action := shared.ApprovalApprove
		if decision == DecisionRejected {
			action = shared.ApprovalReject
		}
		if err := s.approvals.Record(ctx, shared.ApprovalLog{
			Module:  approvalModule,
			RefID:   recordID,
			ActorID: actor.UserID,
			Action:  action,
			Note:    comment,
			At:      update.ReviewedAt,
		}); err != nil {
			s.logger.Warn("record overtime approval", slog.Any("error", err))
		}
	}

	return updated, nil
}

// ReviewHistory returns the approval trail for a record, oldest first.
// Reviewer authorization mirrors the review transition minus the self
// rule: a record owner cannot decide their own request, but any
// reviewer in scope may read its trail.
func (s *Service) ReviewHistory(ctx context.Context, actor authz.Actor, recordID string) ([]shared.ApprovalLog, error) {
	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReviewer(ctx, actor, rec); err != nil {
		return nil, err
	}
	if s.approvals == nil {
		return []shared.ApprovalLog{}, nil
	}
	return s.approvals.List(ctx, approvalModule, recordID)
}

// authorizeReview enforces the reviewer contract for the transition:
// never the record's own owner, then the reviewer rules.
func (s *Service) authorizeReview(ctx context.Context, actor authz.Actor, rec Record) error {
	if actor.UserID == rec.UserID {
		return fmt.Errorf("%w: cannot review own record", ErrReviewForbidden)
	}
	return s.authorizeReviewer(ctx, actor, rec)
}

// authorizeReviewer admits only the reviewer roles. The role check runs
// before the permission check, so a matrix override handing
// overtime:review to another role still cannot make it a reviewer; a
// Team Lead is further restricted to records owned by their resolved
// reports.
func (s *Service) authorizeReviewer(ctx context.Context, actor authz.Actor, rec Record) error {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleHR, authz.RoleTeamLead:
	default:
		return fmt.Errorf("%w: role %q may not review overtime", ErrReviewForbidden, actor.Role)
	}

	var req *authz.Requirement
	if actor.Role == authz.RoleTeamLead {
		req = authz.LeadOf(rec.UserID)
	}
	decision, err := s.gate.Authorize(ctx, actor, authz.PermOvertimeReview, req)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrReviewForbidden, decision.Reason)
	}
	return nil
}
