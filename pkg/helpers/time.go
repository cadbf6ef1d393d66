package helpers

import "time"

// HumanDate renders a YYYY-MM-DD date as "Monday, 02 January 2006". Unparseable
// input is returned unchanged.
func HumanDate(date string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return date
	}
	return t.Format("Monday, 02 January 2006")
}

