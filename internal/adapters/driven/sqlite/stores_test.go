package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewSessionStore(db)
	ctx := context.Background()

	session := &domain.Session{ID: "s1", Name: "first", CreatedAt: time.Now().UTC()}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "first" {
		t.Errorf("Name = %q, want first", got.Name)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSessionNotFound", err)
	}

	if err := store.SaveSummary(ctx, "s1", "the summary"); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	summary, err := store.GetSummary(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary != "the summary" {
		t.Errorf("summary = %q", summary)
	}

	if err := store.SaveSummary(ctx, "missing", "x"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("SaveSummary(missing) error = %v, want ErrSessionNotFound", err)
	}

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("List() returned %d sessions, want 1", len(sessions))
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("session still present after delete")
	}
}

func TestMessageStore_TrimLifecycle(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionStore(db)
	store := NewMessageStore(db)
	ctx := context.Background()

	_ = sessions.Create(ctx, &domain.Session{ID: "s1", CreatedAt: time.Now().UTC()})

	base := time.Now().UTC().Add(-time.Hour)
	var msgs []*domain.Message
	for i := 0; i < 6; i++ {
		msgs = append(msgs, &domain.Message{
			ID:        fmt.Sprintf("m-%d", i),
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := store.Append(ctx, msgs); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	count, err := store.CountBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if count != 6 {
		t.Errorf("count = %d, want 6", count)
	}

	listed, err := store.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if listed[0].ID != "m-0" || listed[5].ID != "m-5" {
		t.Error("messages not in creation order")
	}

	if err := store.MarkTrimmed(ctx, []string{"m-0", "m-1", "m-2"}); err != nil {
		t.Fatalf("MarkTrimmed() error = %v", err)
	}

	trimmed, err := store.ListTrimmed(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("ListTrimmed() error = %v", err)
	}
	if len(trimmed) != 2 {
		t.Fatalf("ListTrimmed() returned %d, want 2", len(trimmed))
	}
	// Most recent first
	if trimmed[0].ID != "m-2" || trimmed[1].ID != "m-1" {
		t.Errorf("trimmed order = %s, %s", trimmed[0].ID, trimmed[1].ID)
	}

	if err := store.SetTrimmed(ctx, "m-2", false); err != nil {
		t.Fatalf("SetTrimmed() error = %v", err)
	}
	trimmed, _ = store.ListTrimmed(ctx, "s1", 10)
	if len(trimmed) != 2 {
		t.Errorf("%d trimmed after restore, want 2", len(trimmed))
	}

	if err := store.SetTrimmed(ctx, "missing", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetTrimmed(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteBySession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteBySession() error = %v", err)
	}
	count, _ = store.CountBySession(ctx, "s1")
	if count != 0 {
		t.Errorf("count = %d after delete, want 0", count)
	}
}

func TestKnowledgeStore_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	store := NewKnowledgeStore(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	entries := []*domain.KnowledgeEntry{
		{ID: "k1", SessionID: "s1", Key: "name", Value: "Sam", CreatedAt: base},
		{ID: "k2", SessionID: "s1", Key: "city", Value: "Lisbon", CreatedAt: base.Add(time.Second)},
		{ID: "k3", SessionID: "s2", Key: "other", Value: "entry", CreatedAt: base.Add(2 * time.Second)},
	}
	if err := store.Append(ctx, entries); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.ListBySession(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// Most recent first
	if got[0].Key != "city" || got[1].Key != "name" {
		t.Errorf("order = %s, %s", got[0].Key, got[1].Key)
	}

	got, _ = store.ListBySession(ctx, "s1", 1)
	if len(got) != 1 || got[0].Key != "city" {
		t.Errorf("limit not applied: %v", got)
	}
}

func TestFileStore_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	store := NewFileStore(db)
	ctx := context.Background()

	now := time.Now().UTC()
	_ = store.Create(ctx, &domain.File{ID: "f1", Name: "a.pdf", SessionID: "s1", CreatedAt: now})
	_ = store.Create(ctx, &domain.File{ID: "f2", Name: "b.pdf", CreatedAt: now})

	if err := store.SoftDelete(ctx, "f1"); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if err := store.SoftDelete(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SoftDelete(missing) error = %v, want ErrNotFound", err)
	}

	deleted, err := store.SoftDeletedIDs(ctx)
	if err != nil {
		t.Fatalf("SoftDeletedIDs() error = %v", err)
	}
	if _, ok := deleted["f1"]; !ok {
		t.Error("f1 not in soft-deleted set")
	}
	if _, ok := deleted["f2"]; ok {
		t.Error("f2 wrongly in soft-deleted set")
	}

	// Soft-deleted files keep their rows
	f, err := store.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !f.SoftDeleted {
		t.Error("SoftDeleted flag not set")
	}

	names, err := store.DisplayNames(ctx, []string{"f1", "f2", "missing"})
	if err != nil {
		t.Fatalf("DisplayNames() error = %v", err)
	}
	if names["f1"] != "a.pdf" || names["f2"] != "b.pdf" {
		t.Errorf("names = %v", names)
	}
	if _, ok := names["missing"]; ok {
		t.Error("unknown ID resolved to a name")
	}
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	// No row yet: defaults
	got, err := store.GetChatSettings(ctx)
	if err != nil {
		t.Fatalf("GetChatSettings() error = %v", err)
	}
	if got.TopK != 5 || got.TrimThreshold != 40 {
		t.Errorf("defaults = %+v", got)
	}

	modified := domain.DefaultChatSettings()
	modified.AllowWebSearch = true
	modified.TopK = 8
	modified.QueryTimeout = 1500 * time.Millisecond
	if err := store.SaveChatSettings(ctx, modified); err != nil {
		t.Fatalf("SaveChatSettings() error = %v", err)
	}

	got, err = store.GetChatSettings(ctx)
	if err != nil {
		t.Fatalf("GetChatSettings() error = %v", err)
	}
	if !got.AllowWebSearch || got.TopK != 8 {
		t.Errorf("settings = %+v", got)
	}
	if got.QueryTimeout != 1500*time.Millisecond {
		t.Errorf("QueryTimeout = %v, want 1.5s", got.QueryTimeout)
	}

	// Upsert overwrites the singleton row
	modified.TopK = 3
	if err := store.SaveChatSettings(ctx, modified); err != nil {
		t.Fatalf("SaveChatSettings() error = %v", err)
	}
	got, _ = store.GetChatSettings(ctx)
	if got.TopK != 3 {
		t.Errorf("TopK = %d after upsert, want 3", got.TopK)
	}
}
