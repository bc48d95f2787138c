package storage

import (
	"context"
	"testing"

	"polysome/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.Run{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "r1",
		ConfigPath:      "two_genes.yaml",
		Seed:            42,
		RunTime:         60,
		TimeStep:        5,
		CreatedUnix:     1700000000,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if loaded != run {
		t.Fatalf("round trip mismatch: %+v != %+v", loaded, run)
	}

	if _, ok, err := store.GetRun(ctx, "absent"); err != nil || ok {
		t.Fatalf("absent run: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i, id := range []string{"c", "a", "b"} {
		run := model.Run{ID: id, CreatedUnix: int64(10 - i)}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "b" || runs[1].ID != "a" || runs[2].ID != "c" {
		t.Fatalf("runs not ordered by creation time: %+v", runs)
	}
}

func TestMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	samples := []model.CountSample{
		{RunID: "r1", Time: 0, Species: "proteinA", Count: 0},
		{RunID: "r1", Time: 5, Species: "proteinA", Count: 3},
		{RunID: "r2", Time: 0, Species: "proteinA", Count: 1},
	}
	if err := store.SaveCounts(ctx, samples); err != nil {
		t.Fatalf("save counts: %v", err)
	}
	got, err := store.GetCounts(ctx, "r1")
	if err != nil {
		t.Fatalf("get counts: %v", err)
	}
	if len(got) != 2 || got[1].Count != 3 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}

func TestFactory(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, err := NewStore("", ""); err != nil {
		t.Fatalf("default store: %v", err)
	}
	if _, err := NewStore("bogus", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
