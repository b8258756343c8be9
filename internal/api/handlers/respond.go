package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/gemscreener/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func parseMarket(w http.ResponseWriter, s string) (contracts.Market, bool) {
	m, err := contracts.ParseMarket(s)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return m, true
}
