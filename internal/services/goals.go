package services

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type GoalService struct {
	storage *storage.Repository
	logger  *log.Logger
}

func NewGoalService(storage *storage.Repository, logger *log.Logger) *GoalService {
	return &GoalService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentGoal),
	}
}

type CreateGoalInput struct {
	Name          string
	TargetAmount  core.Money
	CurrentAmount *core.Money
	Deadline      *time.Time
	Status        *core.GoalStatus
	Description   *string
}

type UpdateGoalInput struct {
	Name          *string
	TargetAmount  *core.Money
	CurrentAmount *core.Money
	Deadline      core.Optional[time.Time]
	Status        *core.GoalStatus
	Description   core.Optional[string]
}

func (s *GoalService) List(ctx context.Context, userID string, status *core.GoalStatus) ([]core.SavingsGoal, error) {
	return s.storage.ListGoals(ctx, userID, status)
}

func (s *GoalService) Get(ctx context.Context, userID, id string) (*core.SavingsGoal, error) {
	return s.storage.GetGoal(ctx, userID, id)
}

func (s *GoalService) Create(ctx context.Context, userID string, in CreateGoalInput) (*core.SavingsGoal, error) {
	goal := core.SavingsGoal{
		Name:         strings.TrimSpace(in.Name),
		TargetAmount: in.TargetAmount,
		Deadline:     in.Deadline,
		Status:       core.GoalInProgress,
		Description:  in.Description,
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	if in.Status != nil {
		goal.Status = *in.Status
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateGoal(ctx, userID, goal)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Savings goal created",
		log.FieldUserID, userID,
		log.FieldRecordID, created.ID,
		log.FieldAmountCents, created.TargetAmount.Cents)
	return created, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, in UpdateGoalInput) (*core.SavingsGoal, error) {
	goal, err := s.storage.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		goal.Name = strings.TrimSpace(*in.Name)
	}
	if in.TargetAmount != nil {
		goal.TargetAmount = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	if in.Deadline.Set {
		goal.Deadline = in.Deadline.Ptr()
	}
	if in.Status != nil {
		goal.Status = *in.Status
	}
	if in.Description.Set {
		goal.Description = in.Description.Ptr()
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.storage.DeleteGoal(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Savings goal deleted",
		log.FieldUserID, userID,
		log.FieldRecordID, id)
	return nil
}
