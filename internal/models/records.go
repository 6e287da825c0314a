package models

// DailyRecord points at the item chosen for a language on Date
type DailyRecord struct {
	SelectedID int  `json:"id"`
	Date       Date `json:"date"`
}

// NoSelection is the DailyRecord used when nothing has been persisted yet
var NoSelection = DailyRecord{SelectedID: -1}

// ShownSet is the ordered history of item ids already presented for a language.
type ShownSet []int

// Contains reports whether id has been shown.
func (s ShownSet) Contains(id int) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Lookup returns the ids as a set for repeated membership checks.
func (s ShownSet) Lookup() map[int]struct{} {
	out := make(map[int]struct{}, len(s))
	for _, v := range s {
		out[v] = struct{}{}
	}
	return out
}

// StreakRecord is the single global visit streak
type StreakRecord struct {
	LastVisit     Date `json:"lastVisit"`
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
}

// Progress is how much of a language's list has been shown since the last reset
type Progress struct {
	Shown   int `json:"shown"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}
