package coverage

import "time"

// AddMonths adds n calendar months to a date, keeping the day of month.
// When the start day does not exist in the target month the result clamps
// to the last day of that month (Jan 31 + 1 month → Feb 28/29).
// time.AddDate is not used because it normalizes overflow instead
// (Jan 31 + 1 month → Mar 2/3).
func AddMonths(date time.Time, n int) time.Time {
	year, month, day := date.Date()

	// Normalize target year/month
	total := int(month) - 1 + n
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)
	if total < 0 {
		// Go integer division truncates toward zero
		targetYear = year + (total-11)/12
		targetMonth = time.Month((total%12+12)%12 + 1)
	}

	if last := lastDayOfMonth(targetYear, targetMonth); day > last {
		day = last
	}

	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, date.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
