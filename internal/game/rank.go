package game

import (
	"math"
	"sort"
	"time"

	"cyberhunt/internal/domain"
)

// Rank orders teams by score, then by progress, both descending. Teams tied
// on both keep registration order.
func Rank(teams []domain.Team, questionCount int, now time.Time) domain.Leaderboard {
	sorted := make([]domain.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Current > sorted[j].Current
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	total, completed := 0, 0
	for i, t := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:     i + 1,
			Medal:    medal(i + 1),
			TeamID:   t.ID,
			Name:     t.Name,
			Score:    t.Score,
			Current:  t.Current,
			Progress: progress(t.Current, questionCount),
			Finished: t.Finished(questionCount),
		})
		total += t.Score
		completed += t.Current
	}

	avg := 0
	if len(sorted) > 0 {
		avg = int(math.Round(float64(total) / float64(len(sorted))))
	}

	return domain.Leaderboard{
		Entries: entries,
		Stats: domain.LeaderboardStats{
			Teams:              len(sorted),
			Questions:          questionCount,
			AverageScore:       avg,
			QuestionsCompleted: completed,
		},
		UpdatedAt: now,
	}
}

// Leaderboard ranks the teams of s.
func (s State) Leaderboard(now time.Time) domain.Leaderboard {
	return Rank(s.Teams, len(s.Questions), now)
}

func medal(rank int) string {
	switch rank {
	case 1:
		return domain.MedalGold
	case 2:
		return domain.MedalSilver
	case 3:
		return domain.MedalBronze
	default:
		return ""
	}
}

// progress is the percentage of questions done, capped at 100. With no
// questions every team counts as done.
func progress(current, questionCount int) float64 {
	if questionCount <= 0 {
		return 100
	}
	return math.Min(float64(current)/float64(questionCount)*100, 100)
}
