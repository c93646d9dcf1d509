package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

// tablePeriod resolves the year (default: current) and optional month (1-12)
// query params into an inclusive [from, to] range in now's location.
func tablePeriod(r *http.Request, now time.Time) (from, to time.Time, year, month int, err error) {
	loc := now.Location()
	year = now.Year()

	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err = strconv.Atoi(yearParam)
		if err != nil || year < 1900 || year > 9999 {
			return time.Time{}, time.Time{}, 0, 0, errors.New("invalid year")
		}
	}

	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		month, err = strconv.Atoi(monthParam)
		if err != nil || month < 1 || month > 12 {
			return time.Time{}, time.Time{}, 0, 0, errors.New("invalid month")
		}
	}

	if month == 0 {
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(1, 0, 0).Add(-time.Nanosecond)
	} else {
		from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}

	return from, to, year, month, nil
}

func monthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}
