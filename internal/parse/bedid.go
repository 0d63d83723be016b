package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var bedIDRe = regexp.MustCompile(`^(.+)-(\d+)$`)

// ParsedBedID holds the structured data parsed from a bed identifier.
type ParsedBedID struct {
	ServiceID string
	Seq       int
}

// ParseBedID splits a human-assigned bed id of the form "<serviceId>-<NN>"
// into its service part and sequence number. The service id may itself
// contain dashes; only the trailing numeric segment is the sequence.
func ParseBedID(raw string) (ParsedBedID, error) {
	s := strings.TrimSpace(raw)
	m := bedIDRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedBedID{}, fmt.Errorf("bed id %q does not match <serviceId>-<NN>", raw)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedBedID{}, fmt.Errorf("bed id %q has a non-numeric sequence: %w", raw, err)
	}
	return ParsedBedID{ServiceID: m[1], Seq: seq}, nil
}

var wordRe = regexp.MustCompile(`[\p{L}\d]+`)

// Abbreviate derives a sector abbreviation from its name: the uppercased
// initials of each word, capped at four characters. Derived once at sector
// creation and stored; never recomputed afterwards.
func Abbreviate(name string) string {
	words := wordRe.FindAllString(name, -1)
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteRune(r[0])
		if b.Len() >= 4 {
			break
		}
	}
	return strings.ToUpper(b.String())
}
