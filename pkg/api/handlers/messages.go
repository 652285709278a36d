package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ridepool/pkg/models"
	"ridepool/pkg/store"
	"ridepool/pkg/utils"
	"ridepool/pkg/validation"
)

// RegisterMessages registers message HTTP routes on the provided router.
func RegisterMessages(r *mux.Router) {
	r.HandleFunc("/v1/chats/{chatID}/messages", createMessage).Methods(http.MethodPost)
	r.HandleFunc("/v1/chats/{chatID}/messages", listMessages).Methods(http.MethodGet)
}

// createMessage handles POST /v1/chats/{chatID}/messages. The write also
// refreshes the parent chat's lastMessage cache when the chat exists; a
// missing chat does not fail the message write.
func createMessage(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatID"]
	if err := validation.SafeID(chatID); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var m models.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m.ChatID = chatID
	if m.ID == "" {
		m.ID = utils.GenID()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	if err := store.SaveMessage(m); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("message", m))
}

// listMessages handles GET /v1/chats/{chatID}/messages. An evicted or
// unknown chat yields an empty sequence, not an error. The optional limit
// query parameter restricts the result to the most recent n messages.
func listMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatID"]
	msgs, err := store.ListMessages(chatID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if lim, err := strconv.Atoi(limStr); err == nil && lim >= 0 && lim < len(msgs) {
			msgs = msgs[len(msgs)-lim:]
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("messages", toRawMessages(msgs)))
}
