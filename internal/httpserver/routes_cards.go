// internal/httpserver/routes_cards.go
//
// Card management routes (all scoped to the caller's collection):
//   - POST   /cards       → create from {title, items} or {title, text} (bulk paste)
//   - GET    /cards       → list, most recently played first
//   - GET    /cards/{id}  → one card
//   - DELETE /cards/{id}  → delete card and its game state
//   - GET    /export      → {games, version} bundle

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/items"
	"github.com/robalobadob/bingo/internal/store"
)

// bundleVersion is the version stamped on exported bundles.
const bundleVersion = 1

func (s *Server) mountCards(r chi.Router) {
	r.Post("/cards", s.handleCreateCard)
	r.Get("/cards", s.handleListCards)
	r.Get("/cards/{id}", s.handleGetCard)
	r.Delete("/cards/{id}", s.handleDeleteCard)
	r.Get("/export", s.handleExport)
}

// createCardReq is the payload for POST /cards. Text, when items is empty,
// is a bulk paste with one item per line.
type createCardReq struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
	Text  string   `json:"text"`
}

// handleCreateCard applies the form rules, generates a shuffled card and stores it.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	raw := req.Items
	if len(raw) == 0 && req.Text != "" {
		raw = items.ParseLines(req.Text)
	}
	title, list, err := items.Sanitize(req.Title, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	c, err := s.gen.Generate(title, list, false)
	var ve *game.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "validation", ve.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generate_failed")
		return
	}
	c.Owner = collectionID(r)
	if err := s.store.StoreCard(r.Context(), c); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("store card")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	hlog.FromRequest(r).Info().Str("cardId", c.ID).Str("title", c.Title).Msg("card created")
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context(), collectionID(r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list cards")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.store.DeleteCard(r.Context(), c.ID); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("delete card")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// bundle mirrors the client-side persisted shape {games, version}.
type bundle struct {
	Games   []game.Card `json:"games"`
	Version int         `json:"version"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context(), collectionID(r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("export")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	writeJSON(w, http.StatusOK, bundle{Games: cards, Version: bundleVersion})
}

// loadOwnedCard loads a card of the caller's collection, writing a 404 when it
// is missing or belongs to someone else.
func (s *Server) loadOwnedCard(w http.ResponseWriter, r *http.Request, id string) (game.Card, bool) {
	c, err := s.store.LoadCard(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && c.Owner != collectionID(r)) {
		writeError(w, http.StatusNotFound, "not_found")
		return game.Card{}, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", id).Msg("load card")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return game.Card{}, false
	}
	return c, true
}
