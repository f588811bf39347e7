package mail

import (
	"strconv"
	"strings"
)

// FormatCurrency renders minor units as pounds, e.g. 19800 -> "£198.00".
func FormatCurrency(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	pounds := strconv.FormatInt(pence/100, 10)

	// thousands separators
	var b strings.Builder
	for i, r := range pounds {
		if i > 0 && (len(pounds)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	p := pence % 100
	cents := strconv.FormatInt(p, 10)
	if p < 10 {
		cents = "0" + cents
	}
	return sign + "£" + b.String() + "." + cents
}

func plural(n int, word string) string {
	if n == 1 {
		return strconv.Itoa(n) + " " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
