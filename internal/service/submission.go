package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
)

const (
	routeWorkerSubmissions = "/dashboard/my-submissions"
	routeCreatorReview     = "/dashboard/task-review"
	routeWorkerHome        = "/dashboard/worker-home"
)

// SubmissionService runs the submission approval workflow.
type SubmissionService struct {
	submissions repository.SubmissionStore
	tasks       repository.TaskStore
	users       repository.UserStore
	notifier    Notifier
	opts        Options
}

func NewSubmissionService(
	submissions repository.SubmissionStore,
	tasks repository.TaskStore,
	users repository.UserStore,
	notifier Notifier,
	opts Options,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		tasks:       tasks,
		users:       users,
		notifier:    notifier,
		opts:        opts,
	}
}

func (s *SubmissionService) notify(ctx context.Context, to, message, route string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, to, message, route)
	}
}

type CreateSubmissionInput struct {
	TaskID  string `json:"taskId"`
	Details string `json:"details"`
	// Optional echoes of the task terms. When present they must match the task.
	CreatorEmail string `json:"creatorEmail"`
	Amount       int64  `json:"amount"`
}

// Create records a Pending submission by worker. The payable amount, task
// title and creator come from the stored task.
func (s *SubmissionService) Create(ctx context.Context, worker domain.User, in CreateSubmissionInput) (domain.Submission, error) {
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return domain.Submission{}, domain.InvalidInput("taskId is required")
	}
	details := strings.TrimSpace(in.Details)
	if details == "" {
		return domain.Submission{}, domain.InvalidInput("details are required")
	}

	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return domain.Submission{}, err
	}
	if in.Amount != 0 && in.Amount != task.RewardPerSubmission {
		return domain.Submission{}, domain.InvalidInput("amount %d does not match task reward %d", in.Amount, task.RewardPerSubmission)
	}
	if in.CreatorEmail != "" && domain.NormalizeEmail(in.CreatorEmail) != task.CreatorEmail {
		return domain.Submission{}, domain.InvalidInput("creatorEmail does not match task creator")
	}

	if s.opts.Policy.UniqueSubmissions {
		n, err := s.submissions.CountSubmissions(ctx, repository.SubmissionFilter{
			TaskID:      task.ID,
			WorkerEmail: worker.Email,
		})
		if err != nil {
			return domain.Submission{}, err
		}
		if n > 0 {
			return domain.Submission{}, domain.ErrDuplicateSubmission
		}
	}

	sub, err := s.submissions.CreateSubmission(ctx, domain.Submission{
		TaskID:       task.ID,
		TaskTitle:    task.Title,
		WorkerEmail:  worker.Email,
		WorkerName:   worker.Name,
		CreatorEmail: task.CreatorEmail,
		Amount:       task.RewardPerSubmission,
		Details:      details,
		Status:       domain.SubmissionPending,
	})
	if err != nil {
		return domain.Submission{}, err
	}

	slog.Info("submission created", "submission_id", sub.ID, "task_id", sub.TaskID, "worker", sub.WorkerEmail)
	s.notify(ctx, sub.CreatorEmail,
		fmt.Sprintf("%s submitted work for %q", sub.WorkerEmail, sub.TaskTitle), routeCreatorReview)
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, caller domain.User, id string) (domain.Submission, error) {
	sub, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if !canManage(caller, sub.CreatorEmail) && caller.Email != sub.WorkerEmail {
		return domain.Submission{}, domain.ErrUnauthorized
	}
	return sub, nil
}

// ListByWorker returns every submission of email in insertion order.
func (s *SubmissionService) ListByWorker(ctx context.Context, email string) ([]domain.Submission, error) {
	return s.submissions.ListSubmissions(ctx, repository.SubmissionFilter{
		WorkerEmail: domain.NormalizeEmail(email),
	})
}

func (s *SubmissionService) ListApprovedByWorker(ctx context.Context, email string) ([]domain.Submission, error) {
	return s.submissions.ListSubmissions(ctx, repository.SubmissionFilter{
		WorkerEmail: domain.NormalizeEmail(email),
		Status:      domain.SubmissionApproved,
	})
}

// Page returns page pageIndex (zero based) of email's submissions. A page
// past the end is empty.
func (s *SubmissionService) Page(ctx context.Context, email string, pageIndex, pageSize int) ([]domain.Submission, error) {
	if pageIndex < 0 {
		return nil, domain.InvalidInput("page must not be negative")
	}
	if pageSize < 1 || pageSize > config.MaxPageSize {
		return nil, domain.InvalidInput("size must be between 1 and %d", config.MaxPageSize)
	}
	if pageIndex > math.MaxInt/pageSize {
		return []domain.Submission{}, nil
	}
	return s.submissions.ListSubmissions(ctx, repository.SubmissionFilter{
		WorkerEmail: domain.NormalizeEmail(email),
		Offset:      pageIndex * pageSize,
		Limit:       pageSize,
	})
}

func (s *SubmissionService) CountByWorker(ctx context.Context, email string) (int64, error) {
	return s.submissions.CountSubmissions(ctx, repository.SubmissionFilter{
		WorkerEmail: domain.NormalizeEmail(email),
	})
}

// PendingForCreator returns the Pending submissions on email's tasks.
func (s *SubmissionService) PendingForCreator(ctx context.Context, email string) ([]domain.Submission, error) {
	return s.submissions.ListSubmissions(ctx, repository.SubmissionFilter{
		CreatorEmail: domain.NormalizeEmail(email),
		Status:       domain.SubmissionPending,
	})
}

// ReviewInput optionally echoes the payout terms of a submission. Values
// that differ from the stored submission are rejected.
type ReviewInput struct {
	Amount      int64  `json:"amount"`
	WorkerEmail string `json:"workerEmail"`
}

func (in ReviewInput) check(sub domain.Submission) error {
	if in.Amount != 0 && in.Amount != sub.Amount {
		return domain.InvalidInput("amount %d does not match submission amount %d", in.Amount, sub.Amount)
	}
	if in.WorkerEmail != "" && domain.NormalizeEmail(in.WorkerEmail) != sub.WorkerEmail {
		return domain.InvalidInput("workerEmail does not match submission")
	}
	return nil
}

func (s *SubmissionService) reviewable(ctx context.Context, caller domain.User, id string, in ReviewInput) (domain.Submission, error) {
	sub, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if !canManage(caller, sub.CreatorEmail) {
		return domain.Submission{}, domain.ErrUnauthorized
	}
	if sub.Status.Terminal() {
		return domain.Submission{}, domain.ErrSubmissionFinalized
	}
	if err := in.check(sub); err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

// Approve moves a Pending submission to Approve and pays its amount to the
// worker. The status flip is conditional, so at most one concurrent Approve
// or Reject wins and the payout runs at most once. When the payout fails
// after the flip a PartialFailureError is returned with the approved
// submission.
func (s *SubmissionService) Approve(ctx context.Context, caller domain.User, id string, in ReviewInput) (domain.Submission, error) {
	sub, err := s.reviewable(ctx, caller, id, in)
	if err != nil {
		return domain.Submission{}, err
	}

	approved, err := s.submissions.TransitionSubmission(ctx, sub.ID, domain.SubmissionPending, domain.SubmissionApproved)
	if err != nil {
		return domain.Submission{}, err
	}
	s.opts.Metrics.SubmissionTransitioned(domain.SubmissionApproved)

	// The flip is committed; finish the payout even if the caller goes away.
	payCtx := context.WithoutCancel(ctx)
	_, err = s.users.AdjustCoin(payCtx, repository.AdjustCoinParams{
		Email:           approved.WorkerEmail,
		Delta:           approved.Amount,
		CountCompletion: true,
		AllowNegative:   true,
		Description:     fmt.Sprintf("submission %s approved", approved.ID),
	})
	if err != nil {
		pf := &domain.PartialFailureError{
			Operation: "approve submission",
			Completed: "status",
			Failed:    "payout",
			Err:       err,
		}
		slog.Error("submission approved without payout",
			"submission_id", approved.ID, "worker", approved.WorkerEmail, "amount", approved.Amount, "error", err)
		s.opts.Metrics.PartialFailure("approve")
		s.opts.ops().LogPartialFailure(pf.Operation, approved.ID, pf)
		return approved, pf
	}

	slog.Info("submission approved", "submission_id", approved.ID, "worker", approved.WorkerEmail, "amount", approved.Amount, "by", caller.Email)
	s.opts.Metrics.CoinsMoved("payout", approved.Amount)
	s.opts.ops().LogSubmissionReviewed(approved)
	s.notify(payCtx, approved.WorkerEmail,
		fmt.Sprintf("You have earned %d coins from %s for completing %q", approved.Amount, approved.CreatorEmail, approved.TaskTitle),
		routeWorkerSubmissions)
	return approved, nil
}

// Reject moves a Pending submission to Rejected. No coin moves.
func (s *SubmissionService) Reject(ctx context.Context, caller domain.User, id string, in ReviewInput) (domain.Submission, error) {
	sub, err := s.reviewable(ctx, caller, id, in)
	if err != nil {
		return domain.Submission{}, err
	}

	rejected, err := s.submissions.TransitionSubmission(ctx, sub.ID, domain.SubmissionPending, domain.SubmissionRejected)
	if err != nil {
		return domain.Submission{}, err
	}
	s.opts.Metrics.SubmissionTransitioned(domain.SubmissionRejected)

	slog.Info("submission rejected", "submission_id", rejected.ID, "worker", rejected.WorkerEmail, "by", caller.Email)
	s.opts.ops().LogSubmissionReviewed(rejected)
	s.notify(ctx, rejected.WorkerEmail,
		fmt.Sprintf("Your submission for %q was rejected by %s", rejected.TaskTitle, rejected.CreatorEmail),
		routeWorkerSubmissions)
	return rejected, nil
}

func (s *SubmissionService) WorkerStats(ctx context.Context, email string) (domain.WorkerStats, error) {
	email = domain.NormalizeEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.WorkerStats{}, err
	}
	total, err := s.submissions.CountSubmissions(ctx, repository.SubmissionFilter{WorkerEmail: email})
	if err != nil {
		return domain.WorkerStats{}, err
	}
	earned, err := s.submissions.SumSubmissionAmounts(ctx, repository.SubmissionFilter{
		WorkerEmail: email,
		Status:      domain.SubmissionApproved,
	})
	if err != nil {
		return domain.WorkerStats{}, err
	}
	return domain.WorkerStats{
		AvailableCoin:         u.TotalCoin,
		TotalSubmissions:      total,
		TotalApprovedEarnings: earned,
	}, nil
}

func (s *SubmissionService) CreatorStats(ctx context.Context, email string) (domain.CreatorStats, error) {
	email = domain.NormalizeEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.CreatorStats{}, err
	}
	pending, err := s.submissions.CountSubmissions(ctx, repository.SubmissionFilter{
		CreatorEmail: email,
		Status:       domain.SubmissionPending,
	})
	if err != nil {
		return domain.CreatorStats{}, err
	}
	paid, err := s.submissions.SumSubmissionAmounts(ctx, repository.SubmissionFilter{
		CreatorEmail: email,
		Status:       domain.SubmissionApproved,
	})
	if err != nil {
		return domain.CreatorStats{}, err
	}
	return domain.CreatorStats{
		AvailableCoin: u.TotalCoin,
		PendingCount:  pending,
		TotalPaidOut:  paid,
	}, nil
}
