package domain

import "time"

// IST has no daylight saving, so a fixed offset is exact.
var ist = time.FixedZone("IST", 5*3600+30*60)

const (
	marketOpenHour   = 9
	marketOpenMinute = 30
	marketCloseHour  = 17
)

// IsMarketOpen reports whether the bullion market trading window is in
// effect at the given instant: Monday-Friday, 09:30-17:00 IST.
func IsMarketOpen(now time.Time) bool {
	local := now.In(ist)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h, m := local.Hour(), local.Minute()
	if h < marketOpenHour || (h == marketOpenHour && m < marketOpenMinute) {
		return false
	}
	return h < marketCloseHour
}
