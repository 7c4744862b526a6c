package app

import (
	"context"
	"sync"
	"time"

	"cyberhunt/internal/domain"
	"cyberhunt/internal/game"
	"cyberhunt/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestionRepository loads the clue set (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
	Invalidate(ctx context.Context) error
}

// GameService owns the single game. Handlers run concurrently, so every
// transition happens under mu and replaces the whole snapshot.
type GameService struct {
	questions QuestionRepository
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu          sync.RWMutex
	state       game.State
	loading     bool
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewGameService(questions QuestionRepository, log *zap.Logger, m *metrics.Metrics) *GameService {
	return NewGameServiceWithClock(questions, log, m, time.Now)
}

// NewGameServiceWithClock allows deterministic timestamps in tests.
func NewGameServiceWithClock(questions QuestionRepository, log *zap.Logger, m *metrics.Metrics, now func() time.Time) *GameService {
	return &GameService{
		questions:   questions,
		log:         log,
		metrics:     m,
		now:         now,
		state:       game.New(nil),
		loading:     true,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// LoadQuestions performs the startup load. Failures are logged and leave the
// game with no questions; there is no retry.
func (s *GameService) LoadQuestions(ctx context.Context) {
	questions, err := s.questions.GetQuestions(ctx)
	if err != nil {
		s.log.Error("loading questions failed", zap.Error(err))
		questions = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	next, err := s.state.ReplaceQuestions(questions)
	if err != nil {
		s.log.Warn("questions arrived after play began, keeping current set", zap.Error(err))
		return
	}
	s.log.Info("questions loaded", zap.Int("count", len(questions)))
	s.commitLocked(next)
}

// ReloadQuestions drops the cached clue set and loads it again. Refused once
// any team has progressed.
func (s *GameService) ReloadQuestions(ctx context.Context) (int, error) {
	s.mu.RLock()
	inProgress := s.state.InProgress()
	s.mu.RUnlock()
	if inProgress {
		return 0, domain.ErrGameInProgress
	}

	if err := s.questions.Invalidate(ctx); err != nil {
		s.log.Warn("invalidating question cache failed", zap.Error(err))
	}
	questions, err := s.questions.GetQuestions(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.ReplaceQuestions(questions)
	if err != nil {
		return 0, err
	}
	s.loading = false
	s.log.Info("questions reloaded", zap.Int("count", len(questions)))
	s.commitLocked(next)
	return len(questions), nil
}

// Loading reports whether the startup load is still in flight.
func (s *GameService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns the current state. It is safe to read without locking.
func (s *GameService) Snapshot() game.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RegisterTeam is the setup-screen registration; it closes once the game starts.
func (s *GameService) RegisterTeam(name string) (domain.Team, error) {
	return s.addTeam(name, true)
}

// AddTeam is the admin registration and works in any phase.
func (s *GameService) AddTeam(name string) (domain.Team, error) {
	return s.addTeam(name, false)
}

func (s *GameService) addTeam(name string, setupOnly bool) (domain.Team, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Team{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if setupOnly && s.state.Started {
		return domain.Team{}, domain.ErrGameStarted
	}
	next, team, err := s.state.AddTeam(id.String(), name, s.now())
	if err != nil {
		return domain.Team{}, err
	}
	s.log.Info("team registered", zap.String("team", team.Name), zap.String("id", team.ID))
	s.commitLocked(next)
	return team, nil
}

// RemoveTeam deletes a team, clearing the selection if it was selected.
func (s *GameService) RemoveTeam(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.RemoveTeam(id)
	if err != nil {
		return err
	}
	s.log.Info("team removed", zap.String("id", id))
	s.commitLocked(next)
	return nil
}

// SubmitAnswer checks an answer for a team. When the answering team is the
// selected one, a correct answer hands the turn to the next team.
func (s *GameService) SubmitAnswer(teamID, answer string) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, result, err := s.state.SubmitAnswer(teamID, answer)
	if err != nil {
		return result, err
	}
	s.metrics.ObserveAnswer(result.Correct)
	if !result.Correct {
		s.log.Debug("incorrect answer", zap.String("team", teamID), zap.Int("question", result.Question))
		return result, nil
	}

	if next.Current == teamID {
		next = next.SelectNext()
	}
	s.log.Info("correct answer",
		zap.String("team", teamID),
		zap.Int("question", result.Question),
		zap.Int("awarded", result.Awarded),
		zap.Int("total", result.TotalScore),
	)
	s.commitLocked(next)
	return result, nil
}

// UseHint reveals the hint for the team's current question.
func (s *GameService) UseHint(teamID string) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, q, err := s.state.UseHint(teamID)
	if err != nil {
		return q, err
	}
	s.metrics.Hints.Inc()
	s.log.Info("hint used", zap.String("team", teamID), zap.Int("clue", q.ID))
	s.commitLocked(next)
	return q, nil
}

// Select makes a team the one being played.
func (s *GameService) Select(teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Select(teamID)
	if err != nil {
		return err
	}
	s.commitLocked(next)
	return nil
}

func (s *GameService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Start()
	if err != nil {
		return err
	}
	s.log.Info("game started", zap.Int("teams", len(next.Teams)), zap.Int("questions", next.QuestionCount()))
	s.commitLocked(next)
	return nil
}

func (s *GameService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("game stopped")
	s.commitLocked(s.state.Stop())
}

func (s *GameService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("game reset", zap.Int("teams_dropped", len(s.state.Teams)))
	s.commitLocked(s.state.Reset())
}

// Leaderboard ranks the current teams.
func (s *GameService) Leaderboard() domain.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Leaderboard(s.now())
}

// Subscribe returns a channel that receives leaderboard updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.state.Leaderboard(s.now())
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *GameService) commitLocked(next game.State) {
	s.state = next
	s.metrics.Teams.Set(float64(len(next.Teams)))
	s.metrics.Questions.Set(float64(next.QuestionCount()))

	lb := next.Leaderboard(s.now())
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow reader: replace its oldest snapshot with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
