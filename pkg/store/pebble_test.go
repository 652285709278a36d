package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ridepool/pkg/models"
)

func openStore(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir(), 0); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestProfileOverwrite(t *testing.T) {
	openStore(t)

	if err := SaveProfile("p1", []byte(`{"id":"p1","name":"A"}`)); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := SaveProfile("p1", []byte(`{"id":"p1","name":"B"}`)); err != nil {
		t.Fatalf("SaveProfile overwrite: %v", err)
	}
	b, err := GetProfile("p1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if got["name"] != "B" {
		t.Fatalf("expected full overwrite, got name=%v", got["name"])
	}
}

func TestGetProfileAbsent(t *testing.T) {
	openStore(t)
	if _, err := GetProfile("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMergeChatPreservesUnknownFields(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1","origin":"campus north"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	merged, err := MergeChat("c1", map[string]any{"destination": "airport"})
	if err != nil {
		t.Fatalf("MergeChat: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("unmarshal merged chat: %v", err)
	}
	if got["origin"] != "campus north" {
		t.Fatalf("merge dropped stored field: %v", got)
	}
	if got["destination"] != "airport" {
		t.Fatalf("merge dropped patch field: %v", got)
	}
	if got["id"] != "c1" || got["userId"] != "u1" {
		t.Fatalf("identity fields damaged: %v", got)
	}
}

func TestMergeChatNotFound(t *testing.T) {
	openStore(t)
	if _, err := MergeChat("missing-id", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMergeChatReindexesOnUserChange(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	if _, err := MergeChat("c1", map[string]any{"userId": "u2"}); err != nil {
		t.Fatalf("MergeChat: %v", err)
	}
	old, err := ListUserChats("u1")
	if err != nil {
		t.Fatalf("ListUserChats u1: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected no chats left under u1, got %d", len(old))
	}
	moved, err := ListUserChats("u2")
	if err != nil {
		t.Fatalf("ListUserChats u2: %v", err)
	}
	if len(moved) != 1 {
		t.Fatalf("expected chat under u2, got %d", len(moved))
	}
}

func TestSaveChatReindexesOnUserChange(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	// re-creation under a new owner must not leave the chat visible to u1
	if err := SaveChat("c1", "u2", []byte(`{"id":"c1","userId":"u2"}`)); err != nil {
		t.Fatalf("SaveChat re-create: %v", err)
	}
	old, err := ListUserChats("u1")
	if err != nil {
		t.Fatalf("ListUserChats u1: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected no chats left under u1, got %d", len(old))
	}
	moved, err := ListUserChats("u2")
	if err != nil {
		t.Fatalf("ListUserChats u2: %v", err)
	}
	if len(moved) != 1 {
		t.Fatalf("expected chat under u2, got %d", len(moved))
	}

	// same-owner re-creation keeps the single index entry
	if err := SaveChat("c1", "u2", []byte(`{"id":"c1","userId":"u2","topic":"library run"}`)); err != nil {
		t.Fatalf("SaveChat same owner: %v", err)
	}
	moved, err = ListUserChats("u2")
	if err != nil {
		t.Fatalf("ListUserChats u2: %v", err)
	}
	if len(moved) != 1 {
		t.Fatalf("expected one chat under u2, got %d", len(moved))
	}
}

func TestDeleteChatCascadesAndIsIdempotent(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	for i := 0; i < 3; i++ {
		m := models.Message{ID: genTestID(i), ChatID: "c1", Text: "hello", SentAt: time.Now().UTC()}
		if err := SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}
	n, err := DeleteChat("c1")
	if err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 messages removed, got %d", n)
	}
	msgs, err := ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages after cascade, got %d", len(msgs))
	}
	if _, err := GetChat("c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected chat gone, got %v", err)
	}
	chats, err := ListUserChats("u1")
	if err != nil {
		t.Fatalf("ListUserChats: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected index entry gone, got %d chats", len(chats))
	}

	// second delete of an already-deleted chat is a success, not an error
	if _, err := DeleteChat("c1"); err != nil {
		t.Fatalf("DeleteChat should be idempotent: %v", err)
	}
	if _, err := DeleteChat("never-existed"); err != nil {
		t.Fatalf("DeleteChat on unknown id should succeed: %v", err)
	}
}

func TestSaveMessageRefreshesLastMessage(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	sent := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := models.Message{ID: "m1", ChatID: "c1", Text: "see you at gate 3", SentAt: sent}
	if err := SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	b, err := GetChat("c1")
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	var c models.Chat
	if err := json.Unmarshal(b, &c); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if c.LastMessage != "see you at gate 3" {
		t.Fatalf("lastMessage not refreshed: %q", c.LastMessage)
	}
	if c.LastMessageTime == nil || !c.LastMessageTime.Equal(sent) {
		t.Fatalf("lastMessageTime not refreshed: %v", c.LastMessageTime)
	}
}

func TestSaveMessageWithoutParentChat(t *testing.T) {
	openStore(t)

	// the message write succeeds; only the refresh is skipped
	m := models.Message{ID: "m1", ChatID: "ghost", Text: "anyone there", SentAt: time.Now().UTC()}
	if err := SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	msgs, err := ListMessages("ghost")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected stored message, got %d", len(msgs))
	}
}

func TestListMessagesInsertionOrder(t *testing.T) {
	openStore(t)

	if err := SaveChat("c1", "u1", []byte(`{"id":"c1","userId":"u1"}`)); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	texts := []string{"first", "second", "third"}
	for i, txt := range texts {
		m := models.Message{ID: genTestID(i), ChatID: "c1", Text: txt, SentAt: time.Now().UTC()}
		if err := SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}
	msgs, err := ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, raw := range msgs {
		var m models.Message
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		if m.Text != texts[i] {
			t.Fatalf("order broken at %d: got %q want %q", i, m.Text, texts[i])
		}
	}
}

func TestDeleteKeysRemovesAll(t *testing.T) {
	openStore(t)

	keys := []string{"a:1", "a:2", "a:3"}
	for _, k := range keys {
		if err := SetKey(k, []byte("v")); err != nil {
			t.Fatalf("SetKey: %v", err)
		}
	}
	if err := DeleteKeys(keys); err != nil {
		t.Fatalf("DeleteKeys: %v", err)
	}
	for _, k := range keys {
		if _, err := GetKey(k); !errors.Is(err, ErrNotFound) {
			t.Fatalf("key %s survived multi-delete: %v", k, err)
		}
	}
	// deleting already-deleted keys is a no-op
	if err := DeleteKeys(keys); err != nil {
		t.Fatalf("DeleteKeys repeat: %v", err)
	}
}

// genTestID builds deterministic ids for table-driven writes.
func genTestID(i int) string {
	return string(rune('a'+i)) + "-msg"
}
