package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ridepool/pkg/lifecycle"
	"ridepool/pkg/store"
	"ridepool/pkg/utils"
	"ridepool/pkg/validation"
)

// RegisterChats registers chat HTTP routes. The list endpoint runs the
// expiry sweep through the provided Sweeper.
func RegisterChats(r *mux.Router, sw *lifecycle.Sweeper) {
	r.HandleFunc("/v1/chats", createChat).Methods(http.MethodPost)
	r.HandleFunc("/v1/chats/{id}", updateChat).Methods(http.MethodPatch)
	r.HandleFunc("/v1/chats/{id}", deleteChat).Methods(http.MethodDelete)
	r.HandleFunc("/v1/users/{userID}/chats", listUserChats(sw)).Methods(http.MethodGet)
}

// createChat handles POST /v1/chats. Chat creation is triggered by the
// external matching flow; the body must carry id and userId.
func createChat(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeObject(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateChat(obj); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := obj["createdAt"]; !ok {
		obj["createdAt"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	chatID := obj["id"].(string)
	userID := obj["userId"].(string)
	b, err := json.Marshal(obj)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := store.SaveChat(chatID, userID, b); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("chat", json.RawMessage(b)))
}

// listUserChats handles GET /v1/users/{userID}/chats. Expired chats are
// evicted as a side effect and only the valid set is returned.
func listUserChats(sw *lifecycle.Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["userID"]
		chats, err := sw.ListChats(userID)
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("chats", toRawMessages(chats)))
	}
}

// updateChat handles PATCH /v1/chats/{id} by merging partial fields into
// the stored chat. Returns 404 when no chat exists at that id.
func updateChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	patch, err := decodeObject(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.RequireKeySafe(patch, "userId"); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v, ok := patch["pickupTime"]; ok && v != nil {
		if s, ok := v.(string); !ok {
			utils.JSONError(w, http.StatusBadRequest, "pickupTime must be an RFC3339 string")
			return
		} else if _, err := time.Parse(time.RFC3339, s); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid pickupTime: "+err.Error())
			return
		}
	}
	merged, err := store.MergeChat(id, patch)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("chat", json.RawMessage(merged)))
}

// deleteChat handles DELETE /v1/chats/{id}. Deleting an absent chat is a
// success; the cascade also removes the chat's messages.
func deleteChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := store.DeleteChat(id); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"success": true})
}
