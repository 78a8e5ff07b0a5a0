package sales

import "time"

// Window names one reporting period for sales analytics.
type Window string

const (
	WindowAllTime     Window = "all_time"
	WindowYearToDate  Window = "ytd"
	WindowMonthToDate Window = "mtd"
	WindowWeekToDate  Window = "wtd"
	WindowDayToDate   Window = "dtd"
)

// Windows returns every reporting window in display order.
func Windows() []Window {
	return []Window{WindowAllTime, WindowYearToDate, WindowMonthToDate, WindowWeekToDate, WindowDayToDate}
}

// WindowStart returns the inclusive lower bound of the window relative to
// now, in now's location. All-time has no bound and returns nil. Weeks start
// on Monday and days start at local midnight.
func WindowStart(w Window, now time.Time) *time.Time {
	loc := now.Location()
	var start time.Time
	switch w {
	case WindowAllTime:
		return nil
	case WindowYearToDate:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	case WindowMonthToDate:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case WindowWeekToDate:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		start = midnight.AddDate(0, 0, -daysSinceMonday)
	case WindowDayToDate:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	default:
		return nil
	}
	return &start
}
