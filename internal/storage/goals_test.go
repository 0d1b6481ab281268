package storage

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestGoalCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	deadline := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateGoal(ctx, user.ID, core.SavingsGoal{
		Name:          "Emergency fund",
		TargetAmount:  core.Money{Cents: 1000000},
		CurrentAmount: core.Money{Cents: 250000},
		Deadline:      &deadline,
		Status:        core.GoalInProgress,
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateGoal() did not assign an id")
	}
	if created.ProgressPercent != 25 {
		t.Errorf("CreateGoal() progress = %d, want 25", created.ProgressPercent)
	}

	got, err := repo.GetGoal(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if got.Name != "Emergency fund" || got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("GetGoal() = %s/%v", got.Name, got.Deadline)
	}
	if got.ProgressPercent != 25 {
		t.Errorf("GetGoal() progress = %d, want 25", got.ProgressPercent)
	}

	got.CurrentAmount = core.Money{Cents: 1000000}
	got.Status = core.GoalCompleted
	got.Deadline = nil
	if err := repo.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal() error = %v", err)
	}
	updated, err := repo.GetGoal(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetGoal() after update error = %v", err)
	}
	if updated.Status != core.GoalCompleted || updated.Deadline != nil {
		t.Errorf("update not persisted: %s / %v", updated.Status, updated.Deadline)
	}
	if updated.ProgressPercent != 100 {
		t.Errorf("updated progress = %d, want 100", updated.ProgressPercent)
	}

	deleted, err := repo.DeleteGoal(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteGoal() = false, want true")
	}
	if _, err := repo.GetGoal(ctx, user.ID, created.ID); err != core.ErrNotFound {
		t.Errorf("GetGoal() after delete error = %v, want ErrNotFound", err)
	}
}

func TestListGoalsOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := newTestUser(t, repo)

	later := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	goals := []core.SavingsGoal{
		{Name: "No deadline", TargetAmount: core.Money{Cents: 100000}, Status: core.GoalInProgress},
		{Name: "Later", TargetAmount: core.Money{Cents: 100000}, Deadline: &later, Status: core.GoalInProgress},
		{Name: "Sooner", TargetAmount: core.Money{Cents: 100000}, Deadline: &sooner, Status: core.GoalPaused},
	}
	for _, g := range goals {
		if _, err := repo.CreateGoal(ctx, user.ID, g); err != nil {
			t.Fatalf("CreateGoal(%s) error = %v", g.Name, err)
		}
	}

	all, err := repo.ListGoals(ctx, user.ID, nil)
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	wantOrder := []string{"Sooner", "Later", "No deadline"}
	if len(all) != len(wantOrder) {
		t.Fatalf("ListGoals() len = %d, want %d", len(all), len(wantOrder))
	}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Errorf("ListGoals()[%d] = %s, want %s", i, all[i].Name, name)
		}
	}

	paused := core.GoalPaused
	filtered, err := repo.ListGoals(ctx, user.ID, &paused)
	if err != nil {
		t.Fatalf("ListGoals(PAUSED) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Sooner" {
		t.Errorf("ListGoals(PAUSED) = %v, want only Sooner", filtered)
	}
}

func TestGoalScopedByUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, _ := repo.EnsureUser(ctx, "alice@example.com", "Alice")
	bob, _ := repo.EnsureUser(ctx, "bob@example.com", "Bob")

	g, err := repo.CreateGoal(ctx, alice.ID, core.SavingsGoal{
		Name:         "Vacation",
		TargetAmount: core.Money{Cents: 50000},
		Status:       core.GoalInProgress,
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	if _, err := repo.GetGoal(ctx, bob.ID, g.ID); err != core.ErrNotFound {
		t.Errorf("GetGoal() across users error = %v, want ErrNotFound", err)
	}
	deleted, err := repo.DeleteGoal(ctx, bob.ID, g.ID)
	if err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}
	if deleted {
		t.Error("DeleteGoal() across users = true, want false")
	}
}
