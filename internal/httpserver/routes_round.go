// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round. Everything under /round:
//   - POST /round/new     → start (or restart) the session's round
//   - GET  /round         → current round snapshot
//   - POST /round/flame   → flame test
//   - POST /round/reagent → add a reagent {"reagent":"AgNO3"}
//   - POST /round/guess   → submit {"cation":"Na+","anion":"Cl-"}
//
// Without a live session there is no round: GET /round answers 404 and
// the actions answer 409, and nothing is allocated.
//
// A wrong guess answers with a notice and its expiry time; the notice is
// not part of the round and is never returned again.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/salt-detective/internal/chem"
	"github.com/robalobadob/salt-detective/internal/game"
	"github.com/robalobadob/salt-detective/internal/store"
)

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Post("/new", s.handleNewRound)
		r.Post("/flame", s.handleFlame)
		r.Post("/reagent", s.handleReagent)
		r.Post("/guess", s.handleGuess)
	})
}

// withEngine runs fn against the caller's engine and writes any error.
// Returns false if a response has already been written.
func (s *Server) withEngine(w http.ResponseWriter, r *http.Request, fn func(*game.Engine) error) bool {
	err := game.ErrNoRound
	if id := sessionID(r); id != "" {
		err = s.store.Update(r.Context(), id, fn)
	}
	if err == nil {
		return true
	}
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("session", sessionID(r)).Msg("round action")
	}
	writeErr(w, status, code)
	return false
}

// errorCode maps engine and store errors onto HTTP status + error code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrNoRound):
		return http.StatusConflict, "no_round"
	case errors.Is(err, game.ErrSolved):
		return http.StatusConflict, "round_solved"
	case errors.Is(err, game.ErrUnknownReagent):
		return http.StatusBadRequest, "unknown_reagent"
	case errors.Is(err, game.ErrUnknownIon):
		return http.StatusBadRequest, "unknown_ion"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusGone, "session_expired"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// -----------------------------------------------------------------------------
// GET /round

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if sessionID(r) == "" {
		writeErr(w, http.StatusNotFound, "no_round")
		return
	}
	var (
		snap game.Snapshot
		ok   bool
	)
	if !s.withEngine(w, r, func(e *game.Engine) error {
		snap, ok = e.State()
		return nil
	}) {
		return
	}
	if !ok {
		writeErr(w, http.StatusNotFound, "no_round")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// -----------------------------------------------------------------------------
// POST /round/new

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	if sessionID(r) == "" {
		id, err := s.issueSession(w, r)
		if err != nil {
			log.Error().Err(err).Msg("issue session")
			writeErr(w, http.StatusInternalServerError, "session_failed")
			return
		}
		r = withSessionID(r, id)
	}
	var snap game.Snapshot
	if !s.withEngine(w, r, func(e *game.Engine) error {
		snap = e.StartRound()
		return nil
	}) {
		return
	}
	log.Debug().Str("session", sessionID(r)).Str("round", snap.RoundID).Msg("round started")
	writeJSON(w, http.StatusOK, snap)
}

// -----------------------------------------------------------------------------
// POST /round/flame

func (s *Server) handleFlame(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	if !s.withEngine(w, r, func(e *game.Engine) (err error) {
		snap, err = e.RunFlameTest()
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// -----------------------------------------------------------------------------
// POST /round/reagent

type reagentReq struct {
	Reagent chem.Reagent `json:"reagent"`
}

func (s *Server) handleReagent(w http.ResponseWriter, r *http.Request) {
	var req reagentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	var snap game.Snapshot
	if !s.withEngine(w, r, func(e *game.Engine) (err error) {
		snap, err = e.AddReagent(req.Reagent)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// -----------------------------------------------------------------------------
// POST /round/guess

type guessReq struct {
	Cation chem.Cation `json:"cation"`
	Anion  chem.Anion  `json:"anion"`
}

type noticeRes struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type guessRes struct {
	Correct bool          `json:"correct"`
	Round   game.Snapshot `json:"round"`
	Notice  *noticeRes    `json:"notice,omitempty"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	var res game.GuessResult
	if !s.withEngine(w, r, func(e *game.Engine) (err error) {
		res, err = e.SubmitGuess(req.Cation, req.Anion)
		return err
	}) {
		return
	}

	out := guessRes{Correct: res.Correct, Round: res.Round}
	if res.Notice != nil {
		out.Notice = &noticeRes{
			Message:   res.Notice.Message,
			ExpiresAt: res.Notice.ExpiresAt(s.now()).UTC(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
