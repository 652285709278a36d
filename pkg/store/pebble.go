package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"ridepool/pkg/logger"
	"ridepool/pkg/models"
)

var db *pebble.DB

// dbPath remembers where the store was opened, for diagnostics.
var dbPath string

// seq reduces message key collisions when multiple messages share the same
// nanosecond timestamp.
var seq uint64

// ErrNotFound is returned when a key or entity is absent.
var ErrNotFound = errors.New("store: not found")

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for use by this package. cacheBytes sets the block cache
// size; zero or negative uses Pebble's default.
func Open(path string, cacheBytes int64) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	opts := &pebble.Options{}
	if cacheBytes > 0 {
		opts.Cache = pebble.NewCache(cacheBytes)
		defer opts.Cache.Unref()
	}
	db, err = pebble.Open(path, opts)
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// Path returns the directory the store was opened at.
func Path() string { return dbPath }

func notOpened() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

// SetKey stores a raw key/value pair.
func SetKey(key string, value []byte) error {
	if db == nil {
		return notOpened()
	}
	err := db.Set([]byte(key), value, pebble.Sync)
	recordOp("set", err)
	if err != nil {
		logger.Error("set_key_failed", "key", key, "error", err)
	}
	return err
}

// GetKey returns the raw value for the given key, or ErrNotFound.
func GetKey(key string) ([]byte, error) {
	if db == nil {
		return nil, notOpened()
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			recordOp("get", nil)
			return nil, ErrNotFound
		}
		recordOp("get", err)
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	recordOp("get", nil)
	return out, nil
}

// DeleteKey removes a key. Deleting an absent key is a no-op, not an error.
func DeleteKey(key string) error {
	if db == nil {
		return notOpened()
	}
	err := db.Delete([]byte(key), pebble.Sync)
	recordOp("delete", err)
	if err != nil {
		logger.Error("delete_key_failed", "key", key, "error", err)
	}
	return err
}

// DeleteKeys removes a set of keys in one batch. The batch is best-effort;
// on commit failure it falls back to per-key deletes and then verifies the
// post-condition rather than trusting the calls.
func DeleteKeys(keys []string) error {
	if db == nil {
		return notOpened()
	}
	if len(keys) == 0 {
		return nil
	}
	b := db.NewBatch()
	for _, k := range keys {
		_ = b.Delete([]byte(k), nil)
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Warn("delete_keys_batch_failed", "count", len(keys), "error", err)
		for _, k := range keys {
			_ = db.Delete([]byte(k), pebble.Sync)
		}
	}
	for _, k := range keys {
		if _, closer, err := db.Get([]byte(k)); err == nil {
			if closer != nil {
				_ = closer.Close()
			}
			recordOp("mdel", fmt.Errorf("key survived delete"))
			return fmt.Errorf("multi-delete left key behind: %s", k)
		}
	}
	recordOp("mdel", nil)
	return nil
}

// ListByPrefix returns all values whose key starts with prefix, in key order.
func ListByPrefix(prefix string) ([][]byte, error) {
	if db == nil {
		return nil, notOpened()
	}
	pfx := []byte(prefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		recordOp("scan", err)
		return nil, err
	}
	defer iter.Close()
	var out [][]byte
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, append([]byte(nil), iter.Value()...))
	}
	recordOp("scan", iter.Error())
	return out, iter.Error()
}

// ListKeys returns all keys that start with the given prefix. An empty
// prefix returns every key in the DB.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, notOpened()
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		recordOp("scan", err)
		return nil, err
	}
	defer iter.Close()
	var out []string
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(pfx) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(append([]byte(nil), iter.Key()...)))
	}
	recordOp("scan", iter.Error())
	return out, iter.Error()
}

// SaveProfile writes a profile unconditionally (create-or-replace; no field
// merge). data is the full profile document.
func SaveProfile(id string, data []byte) error {
	if err := SetKey(ProfileKey(id), data); err != nil {
		return err
	}
	logger.Info("profile_saved", "id", id)
	return nil
}

// GetProfile returns the stored profile JSON, or ErrNotFound.
func GetProfile(id string) ([]byte, error) {
	return GetKey(ProfileKey(id))
}

// SaveChat stores chat metadata and the user index entry that makes the chat
// discoverable by ListUserChats. Re-creating an existing chat under a new
// owner drops the previous owner's index entry first.
func SaveChat(chatID, userID string, data []byte) error {
	if cur, err := GetChat(chatID); err == nil {
		var c models.Chat
		if json.Unmarshal(cur, &c) == nil && c.UserID != "" && c.UserID != userID {
			if err := DeleteKey(UserChatKey(c.UserID, chatID)); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := SetKey(ChatMetaKey(chatID), data); err != nil {
		return err
	}
	if err := SetKey(UserChatKey(userID, chatID), []byte(chatID)); err != nil {
		return err
	}
	logger.Info("chat_saved", "chat", chatID, "user", userID)
	return nil
}

// GetChat returns the stored chat JSON, or ErrNotFound.
func GetChat(chatID string) ([]byte, error) {
	return GetKey(ChatMetaKey(chatID))
}

// MergeChat overlays patch fields onto the stored chat document and writes
// the result back. Unknown stored fields survive; patch fields win. Returns
// ErrNotFound when no chat exists at that id.
func MergeChat(chatID string, patch map[string]any) ([]byte, error) {
	cur, err := GetChat(chatID)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(cur, &doc); err != nil {
		return nil, fmt.Errorf("invalid stored chat %s: %w", chatID, err)
	}
	oldUser, _ := doc["userId"].(string)
	for k, v := range patch {
		doc[k] = v
	}
	doc["id"] = chatID
	nb, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := SetKey(ChatMetaKey(chatID), nb); err != nil {
		return nil, err
	}
	// keep the user index in step when the patch moves the chat
	if newUser, _ := doc["userId"].(string); newUser != oldUser {
		if oldUser != "" {
			_ = DeleteKey(UserChatKey(oldUser, chatID))
		}
		if newUser != "" {
			if err := SetKey(UserChatKey(newUser, chatID), []byte(chatID)); err != nil {
				return nil, err
			}
		}
	}
	logger.Info("chat_merged", "chat", chatID)
	return nb, nil
}

// DeleteChat removes the chat, its user index entry, and every message under
// it. Deleting an absent chat is a success (idempotent). Returns the number
// of message keys removed.
func DeleteChat(chatID string) (int, error) {
	// resolve the index entry before the meta record disappears
	if cur, err := GetChat(chatID); err == nil {
		var c models.Chat
		if json.Unmarshal(cur, &c) == nil && c.UserID != "" {
			if err := DeleteKey(UserChatKey(c.UserID, chatID)); err != nil {
				return 0, err
			}
		}
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	keys, err := ListKeys(ChatRangePrefix(chatID))
	if err != nil {
		return 0, err
	}
	if err := DeleteKeys(keys); err != nil {
		return 0, err
	}
	msgs := 0
	for _, k := range keys {
		if strings.HasPrefix(k, MessagePrefix(chatID)) {
			msgs++
		}
	}
	logger.Info("chat_deleted", "chat", chatID, "messages", msgs)
	return msgs, nil
}

// ListUserChats returns the stored chat documents indexed under a user, in
// index order. Dangling index entries (chat already gone) are dropped from
// the result and cleaned up best-effort.
func ListUserChats(userID string) ([][]byte, error) {
	if db == nil {
		return nil, notOpened()
	}
	ids, err := ListByPrefix(UserChatPrefix(userID))
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		chatID := string(id)
		v, err := GetChat(chatID)
		if errors.Is(err, ErrNotFound) {
			_ = DeleteKey(UserChatKey(userID, chatID))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ListAllChats returns every stored chat document. Used by the background
// sweep, which has no user scope.
func ListAllChats() ([][]byte, error) {
	if db == nil {
		return nil, notOpened()
	}
	iterKeys, err := ListKeys(AllChatsPrefix())
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for _, k := range iterKeys {
		if !strings.HasSuffix(k, ":meta") {
			continue
		}
		v, err := GetKey(k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SaveMessage appends a message to its chat under a sortable key, then
// refreshes the parent chat's lastMessage/lastMessageTime cache. A missing
// parent chat skips the refresh silently; it never fails the message write.
func SaveMessage(msg models.Message) error {
	if msg.ChatID == "" {
		return fmt.Errorf("message missing chatId")
	}
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	key := messageKey(msg.ChatID, ts, s)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := SetKey(key, data); err != nil {
		return err
	}
	logger.Info("message_saved", "chat", msg.ChatID, "id", msg.ID)

	cur, err := GetChat(msg.ChatID)
	if errors.Is(err, ErrNotFound) {
		logger.Debug("last_message_refresh_skipped", "chat", msg.ChatID)
		return nil
	}
	if err != nil {
		return err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(cur, &doc); err != nil {
		return fmt.Errorf("invalid stored chat %s: %w", msg.ChatID, err)
	}
	doc["lastMessage"] = msg.Text
	doc["lastMessageTime"] = msg.SentAt.UTC().Format(time.RFC3339Nano)
	nb, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return SetKey(ChatMetaKey(msg.ChatID), nb)
}

// ListMessages returns all messages for a chat in insertion order.
func ListMessages(chatID string) ([][]byte, error) {
	return ListByPrefix(MessagePrefix(chatID))
}
