package redis

import (
	"context"
	"sort"
	"testing"

	"g1-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestMistakeStoreRecordsPerSection(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewMistakeStore(newClient(mr))
	ctx := context.Background()

	err = store.Record(ctx, "u1", []domain.Mistake{
		{QuestionID: 1, Kind: domain.KindSigns},
		{QuestionID: 2, Kind: domain.KindRules},
		{QuestionID: 3, Kind: domain.KindRules},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if !mr.Exists("mistakes:u1:signs") || !mr.Exists("mistakes:u1:rules") {
		t.Fatalf("expected per-section sets to exist")
	}

	rules, err := store.QuestionIDs(ctx, "u1", domain.FilterRules)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	sort.Ints(rules)
	if len(rules) != 2 || rules[0] != 2 || rules[1] != 3 {
		t.Fatalf("expected rules ids [2 3], got %v", rules)
	}

	all, err := store.QuestionIDs(ctx, "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 ids across sections, got %v", all)
	}
}

func TestMistakeStoreClearRemovesFromBothSections(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewMistakeStore(newClient(mr))
	ctx := context.Background()

	_ = store.Record(ctx, "u1", []domain.Mistake{
		{QuestionID: 1, Kind: domain.KindSigns},
		{QuestionID: 2, Kind: domain.KindRules},
	})
	if err := store.Clear(ctx, "u1", []int{1, 2}); err != nil {
		t.Fatalf("clear: %v", err)
	}

	ids, err := store.QuestionIDs(ctx, "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty mistake list, got %v", ids)
	}
}

func TestMistakeStoreEmptyUserIsClean(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewMistakeStore(newClient(mr))
	ids, err := store.QuestionIDs(context.Background(), "nobody", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}
