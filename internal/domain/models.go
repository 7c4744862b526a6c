package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	// QuestionPoints is awarded for a correct answer without a hint.
	QuestionPoints = 5
	// HintedPoints is awarded for a correct answer after the hint was revealed.
	HintedPoints = 2
	// HintCost is shown next to the hint button; it is never deducted.
	HintCost = 3
	// MaxTeamNameLength bounds team names in runes.
	MaxTeamNameLength = 50

	matchTimeout = 250 * time.Millisecond
)

// Question is one clue of the hunt. Immutable once built by NewQuestion.
type Question struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	AnswerPattern string `json:"-"`
	Hint          string `json:"hint,omitempty"`
	Points        int    `json:"points"`
	HintCost      int    `json:"hintCost"`

	matcher *regexp2.Regexp
}

// NewQuestion compiles the answer pattern case-insensitively with ECMAScript semantics.
func NewQuestion(id int, title, pattern, hint string) (Question, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.ECMAScript)
	if err != nil {
		return Question{}, fmt.Errorf("clue %d: %w: %v", id, ErrInvalidPattern, err)
	}
	re.MatchTimeout = matchTimeout

	return Question{
		ID:            id,
		Title:         title,
		AnswerPattern: pattern,
		Hint:          hint,
		Points:        QuestionPoints,
		HintCost:      HintCost,
		matcher:       re,
	}, nil
}

// Matches reports whether the trimmed answer matches the pattern anywhere.
// A pattern that runs past the match timeout counts as a miss.
func (q Question) Matches(answer string) bool {
	if q.matcher == nil {
		return false
	}
	ok, err := q.matcher.MatchString(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	return ok
}

// QuestionRecord is the uncompiled row form of a question, as stored by caches.
type QuestionRecord struct {
	ID          int    `json:"clue_id"`
	Title       string `json:"title"`
	AnswerRegex string `json:"answer_regex"`
	Hint        string `json:"hint,omitempty"`
}

// Build compiles the record into a Question.
func (r QuestionRecord) Build() (Question, error) {
	return NewQuestion(r.ID, r.Title, r.AnswerRegex, r.Hint)
}

// Record returns the uncompiled form of q.
func (q Question) Record() QuestionRecord {
	return QuestionRecord{ID: q.ID, Title: q.Title, AnswerRegex: q.AnswerPattern, Hint: q.Hint}
}

// BuildQuestions compiles records in order, failing on the first bad pattern.
func BuildQuestions(records []QuestionRecord) ([]Question, error) {
	questions := make([]Question, 0, len(records))
	for _, r := range records {
		q, err := r.Build()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// IndexSet is a copy-on-write set of question indices.
type IndexSet map[int]struct{}

// Has reports membership; a nil set is empty.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// With returns a new set holding s plus i. s is left untouched.
func (s IndexSet) With(i int) IndexSet {
	out := make(IndexSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[i] = struct{}{}
	return out
}

// Sorted lists the indices in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Team is a participant unit with its own score and progress pointer.
type Team struct {
	ID        string
	Name      string
	Score     int
	Current   int
	HintsUsed IndexSet
	Completed IndexSet
	CreatedAt time.Time
}

// Finished reports whether the pointer has run past the last question.
func (t Team) Finished(questionCount int) bool {
	return t.Current >= questionCount
}

// TeamView is the JSON shape of a team.
type TeamView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Current   int       `json:"currentQuestion"`
	HintsUsed []int     `json:"hintsUsed"`
	Completed []int     `json:"completed"`
	Finished  bool      `json:"finished"`
	CreatedAt time.Time `json:"createdAt"`
}

// View renders the team for clients.
func (t Team) View(questionCount int) TeamView {
	return TeamView{
		ID:        t.ID,
		Name:      t.Name,
		Score:     t.Score,
		Current:   t.Current,
		HintsUsed: t.HintsUsed.Sorted(),
		Completed: t.Completed.Sorted(),
		Finished:  t.Finished(questionCount),
		CreatedAt: t.CreatedAt,
	}
}

// Medal names for the podium ranks.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Medal    string  `json:"medal,omitempty"`
	TeamID   string  `json:"teamId"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	Current  int     `json:"currentQuestion"`
	Progress float64 `json:"progress"`
	Finished bool    `json:"finished"`
}

// LeaderboardStats summarises the whole field.
type LeaderboardStats struct {
	Teams              int `json:"teams"`
	Questions          int `json:"questions"`
	AverageScore       int `json:"averageScore"`
	QuestionsCompleted int `json:"questionsCompleted"`
}

// Leaderboard captures the ordered scoreboard.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	Stats     LeaderboardStats   `json:"stats"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// AnswerResult summarizes the outcome of one submission.
type AnswerResult struct {
	TeamID     string `json:"teamId"`
	Question   int    `json:"question"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
	Finished   bool   `json:"finished"`
}
