package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/passcode-go/internal/api/request"
	"github.com/mcoot/passcode-go/internal/api/response"
	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/services/game"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{gameController: gameController}
}

func gameIDVar(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["game_id"])
}

func playerIDVar(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player_id"])
}

// decode reads a JSON body into dst, writing an error response on failure
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, invalidRequest("invalid request body"))
		return false
	}
	return true
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := h.gameController.CreateGame(r.Context(), req.PlayerName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(g.ID), response.CreateGameFromModel(g))
}

// List handles GET /api/v1/games with an optional ?status= filter
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		games []*model.Game
		err   error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.GameStatus(raw)
		if !status.Valid() {
			writeError(w, r, invalidRequest("unknown status %q", raw))
			return
		}
		games, err = h.gameController.ListGamesByStatus(r.Context(), status)
	} else {
		games, err = h.gameController.ListGames(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStatusList(games))
}

// Get handles GET /api/v1/games/{game_id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameIDVar(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStatusFromModel(g))
}

// Delete handles DELETE /api/v1/games/{game_id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gameController.DeleteGame(r.Context(), gameIDVar(r)); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

// Join handles POST /api/v1/games/{game_id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinGameRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := h.gameController.JoinGame(r.Context(), gameIDVar(r), req.PlayerName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinGameFromModel(g))
}

// LockNumber handles POST /api/v1/games/{game_id}/players/{player_id}/lock-number
func (h *GameHandler) LockNumber(w http.ResponseWriter, r *http.Request) {
	var req request.LockNumberRequest
	if !decode(w, r, &req) {
		return
	}

	playerID := playerIDVar(r)
	g, err := h.gameController.LockNumber(r.Context(), gameIDVar(r), playerID, req.SecretNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LockNumberFromModel(g, playerID))
}

// GetPlayer handles GET /api/v1/games/{game_id}/players/{player_id}
func (h *GameHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.gameController.GetPlayer(r.Context(), gameIDVar(r), playerIDVar(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Guess handles POST /api/v1/games/{game_id}/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req request.GuessRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, r, invalidRequest("player_id is required"))
		return
	}

	result, err := h.gameController.ProcessGuess(r.Context(), gameIDVar(r), model.PlayerID(req.PlayerID), req.GuessedNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessFromResult(result))
}

// Guesses handles GET /api/v1/games/{game_id}/guesses with an optional ?player_id= filter
func (h *GameHandler) Guesses(w http.ResponseWriter, r *http.Request) {
	gameID := gameIDVar(r)
	g, err := h.gameController.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var guesses []*model.Guess
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		guesses, err = h.gameController.GetPlayerGuesses(r.Context(), gameID, model.PlayerID(playerID))
	} else {
		guesses, err = h.gameController.GetGuesses(r.Context(), gameID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessHistoryFromModel(g, guesses))
}

// Turn handles GET /api/v1/games/{game_id}/turn
func (h *GameHandler) Turn(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameIDVar(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TurnFromModel(g))
}
