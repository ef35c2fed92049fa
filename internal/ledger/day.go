package ledger

import (
	"time"

	"tileledger/internal/model"
)

// DateLayout is the calendar-day format used by reports and query params.
const DateLayout = "2006-01-02"

// DayBounds returns local midnight of day and the following midnight. A
// timestamp t is on the day when start <= t < end, which keeps 23:59:59 in
// and 00:00:00 of the next day out.
func DayBounds(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func onDay(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// MovesOn filters the moves of one calendar day, keeping store order.
func MovesOn(day time.Time, moves []model.StockMove) []model.StockMove {
	start, end := DayBounds(day)
	out := make([]model.StockMove, 0)
	for _, m := range moves {
		if onDay(m.TS, start, end) {
			out = append(out, m)
		}
	}
	return out
}

// PaymentsOn filters the payments of one calendar day, keeping store order.
func PaymentsOn(day time.Time, payments []model.Payment) []model.Payment {
	start, end := DayBounds(day)
	out := make([]model.Payment, 0)
	for _, p := range payments {
		if onDay(p.TS, start, end) {
			out = append(out, p)
		}
	}
	return out
}
