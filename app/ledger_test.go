package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/memory"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/key"
)

func TestRecorder_FlushPersistsBatch(t *testing.T) {
	keys := memory.NewKeyStore()
	_, k := key.Generate("sf_")
	k = k.WithOwner("user-1")
	keys.Create(context.Background(), k)

	rec := app.NewRecorder(keys, zerolog.Nop(), nil, app.RecorderConfig{
		FlushInterval: time.Hour, // only explicit flushes
	})
	defer rec.Close()

	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	rec.Record(k.ID, "GET /v1/movies", at)
	rec.Record(k.ID, "GET /v1/celebrities", at.Add(time.Second))
	rec.Record(k.ID, "GET /v1/movies", at.Add(2*time.Second))

	if err := rec.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got, err := keys.GetByID(context.Background(), k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got.Usage.LifetimeHits != 3 {
		t.Errorf("LifetimeHits = %d, want 3", got.Usage.LifetimeHits)
	}
	if len(got.Usage.Endpoints) != 2 {
		t.Errorf("Endpoints len = %d, want 2", len(got.Usage.Endpoints))
	}
}

func TestRecorder_CloseFlushesRemaining(t *testing.T) {
	keys := memory.NewKeyStore()
	// A slow store makes the ordering observable: if Close returned
	// before the final flush, the read below would see zero hits.
	keys.RecordDelay = 100 * time.Millisecond
	_, k := key.Generate("sf_")
	k = k.WithOwner("user-1")
	keys.Create(context.Background(), k)

	rec := app.NewRecorder(keys, zerolog.Nop(), nil, app.RecorderConfig{
		FlushInterval: time.Hour,
	})

	rec.Record(k.ID, "GET /v1/news", time.Now().UTC())
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Close returned, so the batch must already be persisted.
	got, err := keys.GetByID(context.Background(), k.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got.Usage.LifetimeHits != 1 {
		t.Errorf("LifetimeHits = %d after Close, want 1", got.Usage.LifetimeHits)
	}
}

func TestRecorder_PersistenceFailureNotSurfacedToRecord(t *testing.T) {
	keys := memory.NewKeyStore()
	keys.FailRecord = true

	rec := app.NewRecorder(keys, zerolog.Nop(), nil, app.RecorderConfig{
		FlushInterval: time.Hour,
	})
	defer rec.Close()

	// Record never fails, even when persistence will.
	rec.Record("key-1", "GET /v1/movies", time.Now().UTC())

	// Flush reports the failure to whoever asks for it.
	if err := rec.Flush(context.Background()); err == nil {
		t.Error("flush should report the persistence failure")
	}
}

func TestRecorder_BatchSizeTriggersFlush(t *testing.T) {
	keys := memory.NewKeyStore()
	_, k := key.Generate("sf_")
	k = k.WithOwner("user-1")
	keys.Create(context.Background(), k)

	rec := app.NewRecorder(keys, zerolog.Nop(), nil, app.RecorderConfig{
		FlushInterval: time.Hour,
		BatchSize:     5,
	})
	defer rec.Close()

	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec.Record(k.ID, "GET /v1/movies", at)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := keys.GetByID(context.Background(), k.ID)
		if got.Usage.LifetimeHits == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("LifetimeHits = %d, want 5 after batch-size flush", got.Usage.LifetimeHits)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
