package domain

import "sort"

// LeaderboardSize is how many entries a leaderboard keeps.
const LeaderboardSize = 50

// RankLeaderboard orders entries by percentage then score, both descending,
// and keeps at most capacity of them. Ties keep insertion order.
func RankLeaderboard(entries []LeaderboardEntry, capacity int) []LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Score > entries[j].Score
	})
	if capacity > 0 && len(entries) > capacity {
		entries = entries[:capacity]
	}
	return entries
}
