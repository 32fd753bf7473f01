package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/repository"
)

// TaskService is the task registry.
type TaskService struct {
	tasks       repository.TaskStore
	submissions repository.SubmissionStore
	opts        Options
}

func NewTaskService(tasks repository.TaskStore, submissions repository.SubmissionStore, opts Options) *TaskService {
	return &TaskService{tasks: tasks, submissions: submissions, opts: opts}
}

type CreateTaskInput struct {
	Title               string     `json:"title"`
	Details             string     `json:"details"`
	SubmissionInfo      string     `json:"submissionInfo"`
	RewardPerSubmission int64      `json:"rewardPerSubmission"`
	RequiredWorkers     int64      `json:"requiredWorkers"`
	ImageURL            string     `json:"imageUrl"`
	CompletionDate      *time.Time `json:"completionDate"`
}

func (in *CreateTaskInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.InvalidInput("title is required")
	}
	if in.RewardPerSubmission <= 0 {
		return domain.InvalidInput("rewardPerSubmission must be positive")
	}
	if in.RequiredWorkers <= 0 {
		return domain.InvalidInput("requiredWorkers must be positive")
	}
	return nil
}

// Create stores a task owned by creator. Funding the task from the
// creator's balance is a separate AdjustCoin call made by the client.
func (s *TaskService) Create(ctx context.Context, creator domain.User, in CreateTaskInput) (domain.Task, error) {
	if err := in.validate(); err != nil {
		return domain.Task{}, err
	}

	t, err := s.tasks.CreateTask(ctx, domain.Task{
		CreatorEmail:        creator.Email,
		Title:               in.Title,
		Details:             in.Details,
		SubmissionInfo:      in.SubmissionInfo,
		RewardPerSubmission: in.RewardPerSubmission,
		RequiredWorkers:     in.RequiredWorkers,
		ImageURL:            strings.TrimSpace(in.ImageURL),
		CompletionDate:      in.CompletionDate,
	})
	if err != nil {
		return domain.Task{}, err
	}
	slog.Info("task created", "task_id", t.ID, "creator", t.CreatorEmail, "funding", t.TotalFunding())
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (domain.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.ListTasks(ctx)
}

func (s *TaskService) ListByCreator(ctx context.Context, email string) ([]domain.Task, error) {
	return s.tasks.ListTasksByCreator(ctx, domain.NormalizeEmail(email))
}

// UpdateTaskInput names the only task fields that may change after creation.
type UpdateTaskInput struct {
	Title          *string `json:"title"`
	Details        *string `json:"details"`
	SubmissionInfo *string `json:"submissionInfo"`
}

func (in UpdateTaskInput) toUpdate() (domain.TaskUpdate, error) {
	u := domain.TaskUpdate{Details: in.Details, SubmissionInfo: in.SubmissionInfo}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.TaskUpdate{}, domain.InvalidInput("title must not be blank")
		}
		u.Title = &title
	}
	if u.Empty() {
		return domain.TaskUpdate{}, domain.InvalidInput("nothing to update")
	}
	return u, nil
}

func (s *TaskService) Update(ctx context.Context, caller domain.User, id string, in UpdateTaskInput) (domain.Task, error) {
	u, err := in.toUpdate()
	if err != nil {
		return domain.Task{}, err
	}
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !canManage(caller, t.CreatorEmail) {
		return domain.Task{}, domain.ErrUnauthorized
	}
	return s.tasks.UpdateTask(ctx, id, u)
}

// Delete removes a task. It is refused while any submission for the task
// is still Pending so an approval can always resolve its task.
func (s *TaskService) Delete(ctx context.Context, caller domain.User, id string) error {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(caller, t.CreatorEmail) {
		return domain.ErrUnauthorized
	}

	pending, err := s.submissions.CountSubmissions(ctx, repository.SubmissionFilter{
		TaskID: id,
		Status: domain.SubmissionPending,
	})
	if err != nil {
		return err
	}
	if pending > 0 {
		return domain.ErrTaskHasPending
	}

	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	slog.Info("task deleted", "task_id", id, "by", caller.Email)
	return nil
}
