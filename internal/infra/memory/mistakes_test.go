package memory

import (
	"context"
	"sort"
	"testing"

	"g1-quiz-service/internal/domain"
)

func TestMistakeStoreRecordAndFilter(t *testing.T) {
	store := NewMistakeStore()
	ctx := context.Background()

	err := store.Record(ctx, "u1", []domain.Mistake{
		{QuestionID: 1, Kind: domain.KindSigns},
		{QuestionID: 2, Kind: domain.KindRules},
		{QuestionID: 3, Kind: domain.KindRules},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	all, err := store.QuestionIDs(ctx, "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	sort.Ints(all)
	if len(all) != 3 || all[0] != 1 || all[2] != 3 {
		t.Fatalf("expected ids [1 2 3], got %v", all)
	}

	rules, err := store.QuestionIDs(ctx, "u1", domain.FilterRules)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	sort.Ints(rules)
	if len(rules) != 2 || rules[0] != 2 || rules[1] != 3 {
		t.Fatalf("expected rules ids [2 3], got %v", rules)
	}
}

func TestMistakeStoreRecordIsIdempotent(t *testing.T) {
	store := NewMistakeStore()
	ctx := context.Background()
	mistake := []domain.Mistake{{QuestionID: 1, Kind: domain.KindSigns}}

	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, "u1", mistake); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	ids, err := store.QuestionIDs(ctx, "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("repeat records must not duplicate, got %v", ids)
	}
}

func TestMistakeStoreClear(t *testing.T) {
	store := NewMistakeStore()
	ctx := context.Background()

	_ = store.Record(ctx, "u1", []domain.Mistake{
		{QuestionID: 1, Kind: domain.KindSigns},
		{QuestionID: 2, Kind: domain.KindRules},
	})
	if err := store.Clear(ctx, "u1", []int{1, 99}); err != nil {
		t.Fatalf("clear: %v", err)
	}

	ids, err := store.QuestionIDs(ctx, "u1", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only id 2 to survive, got %v", ids)
	}
}

func TestMistakeStoreIsolatesUsers(t *testing.T) {
	store := NewMistakeStore()
	ctx := context.Background()

	_ = store.Record(ctx, "u1", []domain.Mistake{{QuestionID: 1, Kind: domain.KindSigns}})
	_ = store.Record(ctx, "u2", []domain.Mistake{{QuestionID: 2, Kind: domain.KindRules}})

	ids, err := store.QuestionIDs(ctx, "u2", domain.FilterAll)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected u2 to only see its own mistakes, got %v", ids)
	}
}
