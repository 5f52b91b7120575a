package api

import "sort"

// SortSessionsNewestFirst orders sessions by CreatedAt descending, breaking
// ties by ID descending.
func SortSessionsNewestFirst(sessions []Session) []Session {
	if len(sessions) == 0 {
		return nil
	}
	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		ti := ParseSessionTime(sorted[i].CreatedAt)
		tj := ParseSessionTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}
