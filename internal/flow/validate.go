package flow

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Validators are pure and total: they classify raw input and never mutate
// anything. Word characters are unicode-aware so Cyrillic expense names work.

var (
	transactionRe = regexp.MustCompile(`^([\p{L}\p{N}_]+(?:[ ]+[\p{L}\p{N}_]+)*)[ ]+(\d+(?:[.,]\d+)?)$`)
	nameRe        = regexp.MustCompile(`^[\p{L}\p{N}_ ]+$`)
	amountRe      = regexp.MustCompile(`^\d+$`)
)

const maxNameLen = 50

// ParseTransactionLine recognizes "<one or more words> <cost>" where the cost
// uses a dot or comma decimal separator. The expense name comes back trimmed
// and capitalized.
func ParseTransactionLine(text string) (expenseName string, cost float64, ok bool) {
	m := transactionRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	cost, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64)
	if err != nil {
		return "", 0, false
	}
	return capitalize(strings.Join(strings.Fields(m[1]), " ")), cost, true
}

// ParseName recognizes category and expense names: word characters and spaces,
// under 50 characters. Yields the trimmed, capitalized string.
func ParseName(text string) (string, bool) {
	if !nameRe.MatchString(text) || utf8.RuneCountInString(text) >= maxNameLen {
		return "", false
	}
	name := capitalize(strings.TrimSpace(text))
	if name == "" {
		return "", false
	}
	return name, true
}

// ParseCost recognizes a bare numeric token with a dot or comma decimal
// separator. Sign is not enforced here; zero and negative values pass through.
func ParseCost(text string) (float64, bool) {
	cost, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}

// ParseAmount recognizes a string of digits only.
func ParseAmount(text string) (int, bool) {
	if !amountRe.MatchString(text) {
		return 0, false
	}
	amount, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// ParseDate recognizes DD.MM.YYYY and DD-MM-YYYY. Impossible calendar dates
// like 31.02 are rejected by checking that the constructed date round-trips.
func ParseDate(text string) (time.Time, bool) {
	parts := strings.Split(strings.ReplaceAll(text, "-", "."), ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// ParseComment accepts any text under 50 characters, counted in runes.
func ParseComment(text string) (string, bool) {
	if utf8.RuneCountInString(text) >= maxNameLen {
		return "", false
	}
	return text, true
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
