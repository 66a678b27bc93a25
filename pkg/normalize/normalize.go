// Package normalize converts Spanish number words, locale-formatted amounts
// and dates into canonical strings.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedNumber is returned when a matched number cannot be normalized.
var ErrMalformedNumber = errors.New("malformed number")

var (
	wordDigits = map[string]int{
		"un": 1, "uno": 1, "una": 1,
		"dos":    2,
		"tres":   3,
		"cuatro": 4,
		"cinco":  5,
		"seis":   6,
		"siete":  7,
		"ocho":   8,
	}

	digitWords = [...]string{"", "un", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho"}

	digitsPattern    = regexp.MustCompile(`^\d+$`)
	thousandsPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	decimalPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// WordToDigit converts a Spanish cardinal between one and eight to its digit
// string. Digit strings pass through unchanged; anything else yields "".
func WordToDigit(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if digitsPattern.MatchString(s) {
		return s
	}
	if n, ok := wordDigits[s]; ok {
		return strconv.Itoa(n)
	}
	return ""
}

// WordToInt is WordToDigit returning an int; ok is false when s is not a
// recognised cardinal.
func WordToInt(s string) (int, bool) {
	d := WordToDigit(s)
	if d == "" {
		return 0, false
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DigitToWord returns the word used for n in family-size phrases
// ("un", "dos", ... "ocho"). Values outside 1..8 yield "".
func DigitToWord(n int) string {
	if n < 1 || n >= len(digitWords) {
		return ""
	}
	return digitWords[n]
}

// NormalizeAmount turns a Spanish-formatted amount into a dot-decimal string:
// "1.234,56" -> "1234.56", "45,50" -> "45.50", "8.000" -> "8000".
func NormalizeAmount(s string) (string, error) {
	raw := s
	s = strings.TrimSpace(strings.NewReplacer(" ", "", "\u00a0", "").Replace(s))

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	if !decimalPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}
	return s, nil
}

// NormalizeScore converts a grade such as "6,50" to "6.50". Grades above ten
// are rejected.
func NormalizeScore(s string) (string, error) {
	raw := s
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !decimalPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v > 10 {
		return "", fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}
	return s, nil
}

// CollapseSpace replaces every whitespace run with a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var monthNames = [...]string{"", "enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// Month returns the month for a Spanish month name, or 0.
func Month(name string) time.Month {
	return months[strings.ToLower(strings.TrimSpace(name))]
}

// MonthName returns the Spanish name of m, or "".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// CanonicalDate renders a date as "15 de mayo de 2023". It returns "" when
// the month is out of range.
func CanonicalDate(day int, month time.Month, year int) string {
	name := MonthName(month)
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", day, name, year)
}

// ISODate renders a date as "2023-05-15", or "" when it is not a real
// calendar date.
func ISODate(day int, month time.Month, year int) string {
	if month < time.January || month > time.December || day < 1 {
		return ""
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return ""
	}
	return t.Format("2006-01-02")
}
