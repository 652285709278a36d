package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"ridepool/pkg/store"
	"ridepool/pkg/utils"
	"ridepool/pkg/validation"
)

// RegisterProfiles registers profile HTTP routes on the provided router.
func RegisterProfiles(r *mux.Router) {
	r.HandleFunc("/v1/profiles", upsertProfile).Methods(http.MethodPost)
	r.HandleFunc("/v1/profiles/{id}", getProfile).Methods(http.MethodGet)
	r.HandleFunc("/v1/profiles/{id}", upsertProfile).Methods(http.MethodPut)
}

// upsertProfile handles POST /v1/profiles and PUT /v1/profiles/{id}.
// Writes are full overwrites; the same operation serves create and update.
func upsertProfile(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeObject(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pathID := mux.Vars(r)["id"]; pathID != "" {
		if bodyID, _ := obj["id"].(string); bodyID != "" && bodyID != pathID {
			utils.JSONError(w, http.StatusBadRequest, "id in body does not match path")
			return
		}
		obj["id"] = pathID
	}
	if err := validation.ValidateProfile(obj); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := obj["id"].(string)
	b, err := json.Marshal(obj)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := store.SaveProfile(id, b); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("profile", json.RawMessage(b)))
}

// getProfile handles GET /v1/profiles/{id}. Returns 404 when absent.
func getProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := store.GetProfile(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, utils.Envelope("profile", json.RawMessage(b)))
}
