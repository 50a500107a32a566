package charts

import (
	"iter"
	"time"

	"github.com/desertthunder/chartx/internal/models"
)

// Tasks yields one [models.FetchTask] per (country, day) in the trailing window ending yesterday.
//
// Dates are calendar days in today's location. Nothing is yielded for an empty country list or days <= 0.
func Tasks(countries []string, days int, today time.Time) iter.Seq[models.FetchTask] {
	return func(yield func(models.FetchTask) bool) {
		if days <= 0 {
			return
		}

		y, m, d := today.Date()
		midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
		start := midnight.AddDate(0, 0, -(days + 1))
		end := midnight.AddDate(0, 0, -1)

		for _, country := range countries {
			for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
				if !yield(models.FetchTask{Country: country, Date: day}) {
					return
				}
			}
		}
	}
}

// Count returns how many tasks [Tasks] would yield.
func Count(countries []string, days int) int {
	if days <= 0 {
		return 0
	}
	return len(countries) * days
}
