package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreSessionAndMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session := &domain.SessionRecord{SessionID: "s1", CreatedAt: time.Now()}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.Stage != domain.StageInitial || got.Language != domain.LanguageEnglish {
		t.Fatalf("unexpected session: %+v", got)
	}

	info := []byte(`{"applicantName":"Ravi"}`)
	if err := store.UpdateSessionState(ctx, "s1", domain.StageDefineScope, domain.LanguageHinglish, info); err != nil {
		t.Fatalf("UpdateSessionState failed: %v", err)
	}
	if err := store.EndSession(ctx, "s1"); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	got, _ = store.GetSession(ctx, "s1")
	if got.Stage != domain.StageDefineScope || got.Language != domain.LanguageHinglish || got.EndedAt == nil {
		t.Fatalf("unexpected session after update: %+v", got)
	}
	if string(got.ExtractedInfo) != string(info) {
		t.Fatalf("unexpected extracted info: %s", got.ExtractedInfo)
	}

	base := time.Now()
	for i, text := range []string{"hello", "hi there"} {
		msg := &domain.Message{
			MessageID: []string{"m1", "m2"}[i],
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := store.GetMessages(ctx, "s1", 10, "")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 2 || messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", messages)
	}

	before, err := store.GetMessages(ctx, "s1", 10, "m2")
	if err != nil {
		t.Fatalf("GetMessages before failed: %v", err)
	}
	if len(before) != 1 || before[0].MessageID != "m1" {
		t.Fatalf("unexpected messages before m2: %+v", before)
	}
}

func TestSQLiteStoreGetSessionMissing(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	got, err := store.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
}

func TestSQLiteStoreEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.CreateSession(ctx, &domain.SessionRecord{SessionID: "s1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	events := []domain.Event{
		{EventID: "e1", SessionID: "s1", Ts: 1, Type: domain.EventTypeUserInput, Payload: json.RawMessage(`{"x":1}`)},
		{EventID: "e2", SessionID: "s1", Ts: 2, Type: domain.EventTypeGenerationStarted},
		{EventID: "e3", SessionID: "s1", Ts: 3, Type: domain.EventTypeGenerationDone},
	}
	for i := range events {
		if err := store.CreateEvent(ctx, &events[i]); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	got, err := store.GetEvents(ctx, "s1", 1, nil, 10)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "e2" {
		t.Fatalf("unexpected events: %+v", got)
	}

	filtered, err := store.GetEvents(ctx, "s1", 0, []string{string(domain.EventTypeUserInput)}, 10)
	if err != nil {
		t.Fatalf("GetEvents filtered failed: %v", err)
	}
	if len(filtered) != 1 || string(filtered[0].Payload) != `{"x":1}` {
		t.Fatalf("unexpected filtered events: %+v", filtered)
	}
}

func TestSQLiteStoreRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	var counter domain.UsageCounter
	found, err := store.Load(ctx, KeyUsage, &counter)
	if err != nil || found {
		t.Fatalf("expected missing record, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, KeyUsage, domain.UsageCounter{Count: 3, Date: "2026-01-02"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, KeyUsage, domain.UsageCounter{Count: 4, Date: "2026-01-02"}); err != nil {
		t.Fatalf("Save overwrite failed: %v", err)
	}

	found, err = store.Load(ctx, KeyUsage, &counter)
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if counter.Count != 4 || counter.Date != "2026-01-02" {
		t.Fatalf("unexpected counter: %+v", counter)
	}

	if err := store.Delete(ctx, KeyUsage); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	found, _ = store.Load(ctx, KeyUsage, &counter)
	if found {
		t.Fatalf("expected record to be deleted")
	}
}
