package memory

import (
	"context"
	"testing"

	"quizblox-service/internal/domain"
)

func TestSessionStoreQuizLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, _ := store.Quiz(ctx, "sid-1"); ok {
		t.Fatalf("expected no session initially")
	}

	session := domain.QuizSession{TotalQuestions: 3, TimerDuration: 30}
	if err := store.SetQuiz(ctx, "sid-1", session); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := store.Quiz(ctx, "sid-1")
	if err != nil || !ok {
		t.Fatalf("expected session present, ok=%v err=%v", ok, err)
	}
	if got.TotalQuestions != 3 {
		t.Fatalf("unexpected session: %+v", got)
	}

	// Stored by copy; mutating the read value must not touch the slot.
	got.Score = 99
	again, _, _ := store.Quiz(ctx, "sid-1")
	if again.Score != 0 {
		t.Fatalf("store leaked shared state")
	}

	if err := store.ClearQuiz(ctx, "sid-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Quiz(ctx, "sid-1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreIdentityLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	identity := domain.SessionIdentity{UserID: "u1", Username: "alice"}
	if err := store.SetIdentity(ctx, "sid-1", identity); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := store.Identity(ctx, "sid-1")
	if err != nil || !ok {
		t.Fatalf("expected identity present, ok=%v err=%v", ok, err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", got)
	}

	if err := store.ClearIdentity(ctx, "sid-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Identity(ctx, "sid-1"); ok {
		t.Fatalf("expected identity removed")
	}
}
