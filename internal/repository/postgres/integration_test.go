package postgres

import (
	"errors"
	"os"
	"testing"

	"github.com/glebk/retro-bot/internal/domain"
)

func setupIntegrationDB(t *testing.T) *Database {
	t.Helper()

	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := New(connStr)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.GetDB().Exec(`TRUNCATE retrospectives, drafts, members RESTART IDENTITY`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}

	return db
}

func TestIntegrationRetrospectives(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := NewRetrospectiveRepository(db)

	score := 8
	retro := &domain.Retrospective{
		UserID:       1,
		SessionLabel: "prep",
		ChatID:       -100,
		MessageID:    5,
		GoodPoints:   "good",
		Improvements: "improve",
		Learnings:    "learned",
		ActionItem:   "act",
		EmotionScore: &score,
	}
	if err := repo.Create(retro); err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if retro.ID == 0 || retro.CreatedAt.IsZero() {
		t.Fatalf("Create() did not populate ID/CreatedAt: %+v", retro)
	}

	dup := *retro
	dup.ID = 0
	if err := repo.Create(&dup); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicate", err)
	}

	ok, err := repo.HasSubmitted(1, "prep")
	if err != nil || !ok {
		t.Errorf("HasSubmitted() = %v, %v; want true", ok, err)
	}

	retro.Learnings = "edited"
	if err := repo.Update(retro); err != nil {
		t.Fatalf("Update() returned error: %v", err)
	}
	got, err := repo.GetByID(retro.ID)
	if err != nil || got == nil || got.Learnings != "edited" {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}

	latest, err := repo.GetLatest(10)
	if err != nil || len(latest) != 1 {
		t.Errorf("GetLatest() = %d rows, %v", len(latest), err)
	}

	deleted, err := repo.Delete(retro.ID)
	if err != nil || !deleted {
		t.Errorf("Delete() = %v, %v", deleted, err)
	}
}

func TestIntegrationDraftsAndMembers(t *testing.T) {
	db := setupIntegrationDB(t)
	drafts := NewDraftRepository(db)
	members := NewMemberRepository(db)

	if err := drafts.Save(&domain.Draft{UserID: 1, GoodPoints: "a"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	if err := drafts.Save(&domain.Draft{UserID: 1, GoodPoints: "b"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}
	d, err := drafts.Get(1)
	if err != nil || d == nil || d.GoodPoints != "b" {
		t.Errorf("Get() = %+v, %v", d, err)
	}
	if err := drafts.Delete(1); err != nil {
		t.Errorf("Delete() returned error: %v", err)
	}

	if err := members.Upsert(&domain.Member{ID: 7, Username: "jisoo"}); err != nil {
		t.Fatalf("Upsert() returned error: %v", err)
	}
	got, err := members.GetByIDs([]int64{7, 8})
	if err != nil || len(got) != 1 || got[7].Username != "jisoo" {
		t.Errorf("GetByIDs() = %v, %v", got, err)
	}
}
