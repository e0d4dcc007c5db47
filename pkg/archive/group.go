package archive

import (
	"sort"
	"time"
)

// Archive is the month-partitioned view of all normalized posts. Buckets are
// rebuilt from scratch every run; nothing here persists.
type Archive struct {
	// Months maps a month key to its posts, newest first.
	Months map[string][]Post

	// Keys holds every month key in descending order, for index rendering.
	Keys []string
}

// MonthKey returns the YYYY-MM grouping key of a timestamp. The key comes
// from the timestamp's own calendar date, not from the display localization:
// a post near a month boundary may display (in +09:00) a date outside the
// folder it is filed under. That mismatch is deliberate.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Group sorts posts newest-first and partitions them by calendar month.
// The sort is stable, so posts with equal timestamps keep their upstream
// order. An empty input yields an empty archive, which still renders as a
// valid (empty) index.
func Group(posts []Post) Archive {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	months := make(map[string][]Post)
	for _, post := range sorted {
		key := MonthKey(post.CreatedAt)
		months[key] = append(months[key], post)
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	return Archive{Months: months, Keys: keys}
}

// TotalPosts returns the number of posts across all buckets
func (a Archive) TotalPosts() int {
	total := 0
	for _, posts := range a.Months {
		total += len(posts)
	}
	return total
}
