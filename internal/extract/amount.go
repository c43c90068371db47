package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	moneyRe = regexp.MustCompile(`금\s*([\d,억천백십만]+)\s*원`)
	dateRe  = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
)

// ParseAmount parses the digits between 금 and 원. It accepts grouped
// numerals ("240,000,000") and Korean unit notation ("2억4천만",
// "1억2,000만"). Zero and malformed amounts are rejected.
func ParseAmount(s string) (int64, bool) {
	s = strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if !strings.ContainsAny(s, "억만천백십") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}

	var total, group, num int64
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int64(r-'0')
			digits = true
		case r == '십' || r == '백' || r == '천':
			if !digits {
				num = 1
			}
			group += num * smallUnit(r)
			num, digits = 0, false
		case r == '만' || r == '억':
			group += num
			if group == 0 {
				return 0, false
			}
			if r == '만' {
				total += group * 10_000
			} else {
				total += group * 100_000_000
			}
			group, num, digits = 0, 0, false
		default:
			return 0, false
		}
	}
	total += group + num
	if total <= 0 {
		return 0, false
	}
	return total, true
}

func smallUnit(r rune) int64 {
	switch r {
	case '십':
		return 10
	case '백':
		return 100
	default:
		return 1000
	}
}

// FindAmount returns the first 금X원 amount in text.
func FindAmount(text string) (int64, bool) {
	m := moneyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ParseAmount(m[1])
}

// ParseDate parses a canonical "YYYY년M월D일" token.
func ParseDate(s string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return dateFromParts(m[1], m[2], m[3])
}

// FirstDate returns the first date in text, which in a registry entry is
// the receipt date.
func FirstDate(text string) time.Time {
	t, _ := ParseDate(text)
	return t
}

func dateFromParts(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	mo, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
