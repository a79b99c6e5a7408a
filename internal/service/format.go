package service

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const readableDateLayout = "2 Jan 2006, 3:04 PM"

func readableDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(readableDateLayout)
}

func createdAgo(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatRupees renders amounts as ₹1,234 or ₹1,234.50.
func formatRupees(d decimal.Decimal) string {
	if d.IsInteger() {
		return "₹" + humanize.Comma(d.IntPart())
	}
	f, _ := d.Round(2).Float64()
	return "₹" + humanize.FormatFloat("#,###.##", f)
}
