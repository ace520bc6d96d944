package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avdeeva/spendbot/internal/db"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey).(*Claims)

	user, err := a.db.GetUserByDiscordID(r.Context(), claims.DiscordID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			http.Error(w, "user not registered with the bot", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to look up user", http.StatusInternalServerError)
		return
	}

	categories, err := a.ledger.ListCategories(r.Context(), user.UserID)
	if err != nil {
		http.Error(w, "failed to list categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey).(*Claims)

	user, err := a.db.GetUserByDiscordID(r.Context(), claims.DiscordID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			http.Error(w, "user not registered with the bot", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to look up user", http.StatusInternalServerError)
		return
	}

	transactions, err := a.ledger.ListTransactions(r.Context(), user.UserID)
	if err != nil {
		http.Error(w, "failed to list transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}
