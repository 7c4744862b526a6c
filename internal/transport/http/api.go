package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cyberhunt/internal/domain"
	"cyberhunt/internal/game"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

type stateResponse struct {
	Loading       bool              `json:"loading"`
	Started       bool              `json:"started"`
	Complete      bool              `json:"complete"`
	CurrentTeam   string            `json:"currentTeam,omitempty"`
	QuestionCount int               `json:"questionCount"`
	Teams         []domain.TeamView `json:"teams"`
}

type teamRequest struct {
	Name string `json:"name"`
}

type teamIDRequest struct {
	TeamID string `json:"teamId"`
}

type answerRequest struct {
	TeamID string `json:"teamId"`
	Answer string `json:"answer"`
}

type hintResponse struct {
	TeamID   string `json:"teamId"`
	ClueID   int    `json:"clueId"`
	Hint     string `json:"hint"`
	HintCost int    `json:"hintCost"`
	Worth    int    `json:"worth"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type reloadResponse struct {
	Questions int `json:"questions"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondErr maps domain errors onto status codes.
func respondErr(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBlankTeamName),
		errors.Is(err, domain.ErrTeamNameTooLong):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateTeamName),
		errors.Is(err, domain.ErrTeamFinished),
		errors.Is(err, domain.ErrNoTeams),
		errors.Is(err, domain.ErrGameStarted),
		errors.Is(err, domain.ErrGameInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPattern):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func newStateResponse(state game.State, loading bool) stateResponse {
	n := state.QuestionCount()
	teams := make([]domain.TeamView, 0, len(state.Teams))
	for _, t := range state.Teams {
		teams = append(teams, t.View(n))
	}
	return stateResponse{
		Loading:       loading,
		Started:       state.Started,
		Complete:      state.Complete(),
		CurrentTeam:   state.Current,
		QuestionCount: n,
		Teams:         teams,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newStateResponse(s.service.Snapshot(), s.service.Loading()))
}

// handleQuestions lists the clues without their answer patterns.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs := s.service.Snapshot().Questions
	if qs == nil {
		qs = []domain.Question{}
	}
	respondJSON(w, http.StatusOK, qs)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Leaderboard())
}

func (s *Server) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := s.service.RegisterTeam(req.Name)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, team.View(s.service.Snapshot().QuestionCount()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req teamIDRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.service.Select(req.TeamID); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStateResponse(s.service.Snapshot(), s.service.Loading()))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.service.SubmitAnswer(req.TeamID, req.Answer)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req teamIDRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := s.service.UseHint(req.TeamID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hintResponse{
		TeamID:   req.TeamID,
		ClueID:   q.ID,
		Hint:     q.Hint,
		HintCost: q.HintCost,
		Worth:    domain.HintedPoints,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Start(); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStateResponse(s.service.Snapshot(), s.service.Loading()))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.service.Stop()
	respondJSON(w, http.StatusOK, newStateResponse(s.service.Snapshot(), s.service.Loading()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset()
	respondJSON(w, http.StatusOK, newStateResponse(s.service.Snapshot(), s.service.Loading()))
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := s.admin.Login(req.Username, req.Password)
	if err != nil {
		s.log.Info("admin login rejected", zap.String("username", req.Username))
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleAdminAddTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := s.service.AddTeam(req.Name)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, team.View(s.service.Snapshot().QuestionCount()))
}

func (s *Server) handleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveTeam(chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReloadQuestions(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ReloadQuestions(r.Context())
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.log.Error("reloading questions failed", zap.Error(err))
			respondError(w, http.StatusBadGateway, "reload questions: "+err.Error())
			return
		}
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reloadResponse{Questions: n})
}
