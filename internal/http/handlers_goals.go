package http

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createGoalRequest struct {
	Name          string           `json:"name"`
	TargetAmount  core.Money       `json:"targetAmount"`
	CurrentAmount *core.Money      `json:"currentAmount"`
	Deadline      *time.Time       `json:"deadline"`
	Status        *core.GoalStatus `json:"status"`
	Description   *string          `json:"description"`
}

type updateGoalRequest struct {
	Name          *string             `json:"name"`
	TargetAmount  *core.Money         `json:"targetAmount"`
	CurrentAmount *core.Money         `json:"currentAmount"`
	Deadline      nullable[time.Time] `json:"deadline"`
	Status        *core.GoalStatus    `json:"status"`
	Description   nullable[string]    `json:"description"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	var status *core.GoalStatus
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		st := core.GoalStatus(v)
		if !st.Valid() {
			writeDomainError(w, core.ErrInvalidStatus)
			return
		}
		status = &st
	}

	goals, err := s.goals.List(r.Context(), s.user.ID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if goals == nil {
		goals = []core.SavingsGoal{}
	}
	writeList(w, goals, len(goals))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.Get(r.Context(), s.user.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, goal)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	goal, err := s.goals.Create(r.Context(), s.user.ID, services.CreateGoalInput{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
		Status:        req.Status,
		Description:   req.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req updateGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	goal, err := s.goals.Update(r.Context(), s.user.ID, r.PathValue("id"), services.UpdateGoalInput{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline.Optional,
		Status:        req.Status,
		Description:   req.Description.Optional,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.Delete(r.Context(), s.user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
