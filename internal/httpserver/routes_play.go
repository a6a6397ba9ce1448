// internal/httpserver/routes_play.go
//
// Play routes:
//   - POST /cards/{id}/play    → resume (or start) the card's session
//   - POST /cards/{id}/toggle  → {cell} flips one cell
//   - POST /cards/{id}/reset   → fresh session
//   - GET  /cards/{id}/share   → {token, url}
//   - GET  /play?data=|id=     → import a shared card, or open a stored one (303)
//   - GET  /play/{id}          → card + current session
//   - GET  /share/check?data=  → {valid}
//
// The first time a card is played (no stored state) its play count and
// last-played time are bumped.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/share"
	"github.com/robalobadob/bingo/internal/store"
)

func (s *Server) mountPlay(r chi.Router) {
	r.Post("/cards/{id}/play", s.handlePlay)
	r.Post("/cards/{id}/toggle", s.handleToggle)
	r.Post("/cards/{id}/reset", s.handleReset)
	r.Get("/cards/{id}/share", s.handleShare)
	r.Get("/play", s.handleOpen)
	r.Get("/play/{id}", s.handlePlay)
	r.Get("/share/check", s.handleShareCheck)
}

// playRes is the view of one card in play.
type playRes struct {
	Card         game.Card  `json:"card"`
	State        game.State `json:"state"`
	Won          bool       `json:"won"`
	WinningCells []int      `json:"winningCells"`
	NewWin       bool       `json:"newWin,omitempty"`
}

func newPlayRes(c game.Card, st game.State) playRes {
	cells := st.WinningCells()
	if cells == nil {
		cells = []int{}
	}
	return playRes{Card: c, State: st, Won: st.Won(), WinningCells: cells}
}

// session returns the stored state of c, starting (and storing) a new one
// if the card has never been played. The returned card reflects the bump.
func (s *Server) session(r *http.Request, c game.Card) (game.Card, game.State, error) {
	ctx := r.Context()
	st, err := s.store.LoadState(ctx, c.ID)
	if err == nil {
		return c, st.Normalize(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return c, game.State{}, err
	}

	now := s.now()
	st = game.NewState(c.ID, now)
	if err := s.store.StoreState(ctx, st); err != nil {
		return c, game.State{}, err
	}
	c = c.Played(now)
	if err := s.store.StoreCard(ctx, c); err != nil {
		return c, game.State{}, err
	}
	hlog.FromRequest(r).Info().Str("cardId", c.ID).Int("playCount", c.PlayCount).Msg("session started")
	return c, st, nil
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	c, st, err := s.session(r, c)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("start session")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	writeJSON(w, http.StatusOK, newPlayRes(c, st))
}

type toggleReq struct {
	Cell *int `json:"cell"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	c, st, err := s.session(r, c)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("load session")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}

	next, newWin, err := st.Toggle(*req.Cell, s.now())
	var ie *game.InvalidIndexError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, "invalid_index", ie.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "toggle_failed")
		return
	}
	if err := s.store.StoreState(r.Context(), next); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("store state")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	if newWin {
		hlog.FromRequest(r).Info().
			Str("cardId", c.ID).
			Strs("patterns", next.WonPatterns).
			Msg("bingo")
	}

	res := newPlayRes(c, next)
	res.NewWin = newWin
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	st := game.NewState(c.ID, s.now())
	if err := s.store.StoreState(r.Context(), st); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("cardId", c.ID).Msg("reset")
		writeError(w, http.StatusInternalServerError, "store_failed")
		return
	}
	writeJSON(w, http.StatusOK, newPlayRes(c, st))
}

type shareRes struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadOwnedCard(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	tok, err := share.Encode(c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	writeJSON(w, http.StatusOK, shareRes{Token: tok, URL: share.URLFor(s.baseURL(r), tok)})
}

// handleOpen resolves /play links. A data token takes precedence over an id:
// the shared card is imported into the caller's collection and the client is
// redirected to it.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if data := q.Get("data"); data != "" {
		shared, err := share.Decode(data)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("bad share link")
			writeError(w, http.StatusBadRequest, "invalid_link", "this share link is invalid or corrupted")
			return
		}
		c, err := s.gen.Generate(shared.Title, shared.Items, true)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_link", err.Error())
			return
		}
		c.Owner = collectionID(r)
		if err := s.store.StoreCard(r.Context(), c); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("store imported card")
			writeError(w, http.StatusInternalServerError, "store_failed")
			return
		}
		hlog.FromRequest(r).Info().Str("cardId", c.ID).Str("title", c.Title).Msg("card imported")
		http.Redirect(w, r, "/play/"+url.PathEscape(c.ID), http.StatusSeeOther)
		return
	}
	if id := q.Get("id"); id != "" {
		http.Redirect(w, r, "/play/"+url.PathEscape(id), http.StatusSeeOther)
		return
	}
	writeError(w, http.StatusBadRequest, "no_game", "no game specified")
}

func (s *Server) handleShareCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": share.IsValid(r.URL.Query().Get("data"))})
}
