package store

import "fmt"

// Key grammar. Chats are keyed by id alone; the per-user scan goes through a
// secondary index so lookup-by-id and lookup-by-user work off the same
// record. Messages live under the chat's range so a single prefix delete
// cascades meta and messages together.
//
//	profile:<id>
//	chat:<chatID>:meta
//	chat:<chatID>:msg:<zero-padded-unixnano>-<seq>
//	user:<userID>:chat:<chatID>   (value: chatID)
const (
	profilePrefix = "profile:"
	chatPrefix    = "chat:"
	userPrefix    = "user:"
)

// ProfileKey returns the storage key for a profile id.
func ProfileKey(id string) string { return profilePrefix + id }

// ChatMetaKey returns the storage key for a chat's metadata record.
func ChatMetaKey(chatID string) string { return chatPrefix + chatID + ":meta" }

// ChatRangePrefix covers a chat's meta record and all of its messages.
func ChatRangePrefix(chatID string) string { return chatPrefix + chatID + ":" }

// MessagePrefix covers all message keys for a chat.
func MessagePrefix(chatID string) string { return chatPrefix + chatID + ":msg:" }

// AllChatsPrefix covers every chat range in the store.
func AllChatsPrefix() string { return chatPrefix }

// UserChatKey returns the secondary index key tying a chat to its user.
func UserChatKey(userID, chatID string) string {
	return userPrefix + userID + ":chat:" + chatID
}

// UserChatPrefix covers a user's chat index entries.
func UserChatPrefix(userID string) string { return userPrefix + userID + ":chat:" }

// messageKey builds a sortable message key so a prefix scan yields messages
// in insertion order even when many share the same nanosecond timestamp.
func messageKey(chatID string, ts int64, seq uint64) string {
	return fmt.Sprintf("%s%020d-%06d", MessagePrefix(chatID), ts, seq)
}
