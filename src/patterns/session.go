package patterns

// ----- session labels -----

const (
	SessionAsian   = "Asian"
	SessionLondon  = "London"
	SessionNewYork = "New York"
)

const (
	londonOpenHour  = 7
	londonCloseHour = 16
	newYorkOpenHour = 13
	newYorkCloseHr  = 22
)

// SessionForHour maps a UTC hour-of-day to a named trading session.
//
// Hours 13-15 satisfy both the London and New York bands; London is checked
// first so the overlap always resolves to London. Keep this ordering: it is
// load-bearing for every session statistic already stored.
func SessionForHour(hour int) string {
	if hour >= londonOpenHour && hour < londonCloseHour {
		return SessionLondon
	}
	if hour >= newYorkOpenHour && hour < newYorkCloseHr {
		return SessionNewYork
	}
	return SessionAsian
}
