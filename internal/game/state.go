// Package game holds the CyberHunt state machine. Every transition takes a
// State by value and returns a new one; nothing reachable from the input is
// mutated, so callers can hand snapshots to readers without copying.
package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"cyberhunt/internal/domain"
)

// State is an immutable snapshot of one game.
type State struct {
	Questions []domain.Question
	Teams     []domain.Team
	// Current is the ID of the team being played on the game screen, or "".
	Current string
	Started bool
}

// New returns an empty, stopped game over the given questions.
func New(questions []domain.Question) State {
	return State{Questions: questions}
}

// QuestionCount is the number of loaded questions.
func (s State) QuestionCount() int {
	return len(s.Questions)
}

// Team looks a team up by ID.
func (s State) Team(id string) (domain.Team, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Teams[i], true
	}
	return domain.Team{}, false
}

// CurrentQuestion returns the question a team is on, if it has not finished.
func (s State) CurrentQuestion(teamID string) (domain.Question, bool) {
	t, ok := s.Team(teamID)
	if !ok || t.Finished(len(s.Questions)) {
		return domain.Question{}, false
	}
	return s.Questions[t.Current], true
}

// Complete reports whether every team has answered every question.
// With no questions loaded this holds for any set of teams.
func (s State) Complete() bool {
	for _, t := range s.Teams {
		if !t.Finished(len(s.Questions)) {
			return false
		}
	}
	return true
}

// InProgress reports whether any team has scored or advanced.
func (s State) InProgress() bool {
	for _, t := range s.Teams {
		if t.Current > 0 || len(t.HintsUsed) > 0 {
			return true
		}
	}
	return false
}

// ValidateTeamName trims name and checks it against the registered teams.
func (s State) ValidateTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrBlankTeamName
	}
	if utf8.RuneCountInString(name) > domain.MaxTeamNameLength {
		return "", domain.ErrTeamNameTooLong
	}
	for _, t := range s.Teams {
		if strings.EqualFold(t.Name, name) {
			return "", domain.ErrDuplicateTeamName
		}
	}
	return name, nil
}

// AddTeam registers a fresh team. On error s is returned unchanged.
func (s State) AddTeam(id, name string, now time.Time) (State, domain.Team, error) {
	name, err := s.ValidateTeamName(name)
	if err != nil {
		return s, domain.Team{}, err
	}

	team := domain.Team{
		ID:        id,
		Name:      name,
		HintsUsed: domain.IndexSet{},
		Completed: domain.IndexSet{},
		CreatedAt: now,
	}

	teams := make([]domain.Team, 0, len(s.Teams)+1)
	teams = append(teams, s.Teams...)
	s.Teams = append(teams, team)
	return s, team, nil
}

// RemoveTeam drops a team and clears the selection if it pointed at it.
func (s State) RemoveTeam(id string) (State, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, domain.ErrTeamNotFound
	}

	teams := make([]domain.Team, 0, len(s.Teams)-1)
	teams = append(teams, s.Teams[:i]...)
	s.Teams = append(teams, s.Teams[i+1:]...)
	if s.Current == id {
		s.Current = ""
	}
	return s, nil
}

// SubmitAnswer tests raw against the team's current question. A miss leaves
// the state untouched and may be retried without limit.
func (s State) SubmitAnswer(teamID, raw string) (State, domain.AnswerResult, error) {
	i := s.indexOf(teamID)
	if i < 0 {
		return s, domain.AnswerResult{}, domain.ErrTeamNotFound
	}
	team := s.Teams[i]
	if team.Finished(len(s.Questions)) {
		return s, domain.AnswerResult{}, domain.ErrTeamFinished
	}

	idx := team.Current
	result := domain.AnswerResult{
		TeamID:     team.ID,
		Question:   idx,
		TotalScore: team.Score,
	}
	if !s.Questions[idx].Matches(raw) {
		return s, result, nil
	}

	award := domain.QuestionPoints
	if team.HintsUsed.Has(idx) {
		award = domain.HintedPoints
	}

	team.Score += award
	team.Current = idx + 1
	team.Completed = team.Completed.With(idx)

	result.Correct = true
	result.Awarded = award
	result.TotalScore = team.Score
	result.Finished = team.Finished(len(s.Questions))

	return s.replaceTeam(i, team), result, nil
}

// UseHint marks the team's current question as hinted. The penalty is only
// applied when that question is later answered.
func (s State) UseHint(teamID string) (State, domain.Question, error) {
	i := s.indexOf(teamID)
	if i < 0 {
		return s, domain.Question{}, domain.ErrTeamNotFound
	}
	team := s.Teams[i]
	if team.Finished(len(s.Questions)) {
		return s, domain.Question{}, domain.ErrTeamFinished
	}

	q := s.Questions[team.Current]
	if team.HintsUsed.Has(team.Current) {
		return s, q, nil
	}
	team.HintsUsed = team.HintsUsed.With(team.Current)
	return s.replaceTeam(i, team), q, nil
}

// Select makes teamID the team being played.
func (s State) Select(teamID string) (State, error) {
	if s.indexOf(teamID) < 0 {
		return s, domain.ErrTeamNotFound
	}
	s.Current = teamID
	return s, nil
}

// SelectNext moves the selection to the team registered after the current
// one, wrapping around.
func (s State) SelectNext() State {
	if len(s.Teams) == 0 {
		s.Current = ""
		return s
	}
	next := (s.indexOf(s.Current) + 1) % len(s.Teams)
	s.Current = s.Teams[next].ID
	return s
}

// Start opens the game. It needs at least one registered team.
func (s State) Start() (State, error) {
	if len(s.Teams) == 0 {
		return s, domain.ErrNoTeams
	}
	s.Started = true
	return s, nil
}

// Stop pauses the game; teams and scores are kept.
func (s State) Stop() State {
	s.Started = false
	return s
}

// Reset drops every team and stops the game. Questions are kept.
func (s State) Reset() State {
	return State{Questions: s.Questions}
}

// ReplaceQuestions swaps the question set while no team has progressed.
func (s State) ReplaceQuestions(questions []domain.Question) (State, error) {
	if s.InProgress() {
		return s, domain.ErrGameInProgress
	}
	s.Questions = questions
	return s, nil
}

func (s State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range s.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s State) replaceTeam(i int, team domain.Team) State {
	teams := make([]domain.Team, len(s.Teams))
	copy(teams, s.Teams)
	teams[i] = team
	s.Teams = teams
	return s
}
