package utils

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Vietnam has no DST; a fixed zone avoids depending on tzdata in the image.
var vnZone = time.FixedZone("ICT", 7*60*60)

var vnPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders whole dong with vi-VN grouping, e.g. "1.234.567 ₫".
func FormatVND(amount decimal.Decimal) string {
	return vnPrinter.Sprintf("%d", amount.Round(0).IntPart()) + " ₫"
}

// FormatTime renders a timestamp the way the dashboards show it: 15:04:05 2/1/2006.
func FormatTime(t time.Time) string {
	return t.In(vnZone).Format("15:04:05 2/1/2006")
}
