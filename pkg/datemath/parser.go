package datemath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable reports a date expression the parser cannot resolve. Callers
// must treat this as a hard failure, never substitute a default date.
var ErrUnparseable = errors.New("unparseable date expression")

// Parser converts date expressions (absolute or relative) to absolute
// time.Time values in a fixed timezone.
type Parser struct {
	location *time.Location
}

// NewParser creates a parser for the given IANA timezone, e.g. "Europe/Berlin".
func NewParser(timezone string) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

// Location returns the parser's timezone.
func (p *Parser) Location() *time.Location {
	return p.location
}

// absoluteLayouts are tried in order before any relative interpretation.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	inDurationRe = regexp.MustCompile(`^in (\d+) (day|days|week|weeks|month|months|hour|hours|minute|minutes)$`)
	atTimeRe     = regexp.MustCompile(`^(.*?)(?: at (\d{1,2})(?::(\d{2}))?\s*(am|pm)?)$`)
)

// Parse resolves expr against baseTime. Absolute forms (RFC3339 first) win;
// otherwise relative phrases like "tomorrow at 10", "in 3 days" or
// "next monday" are resolved. Anything else returns ErrUnparseable.
func (p *Parser) Parse(expr string, baseTime time.Time) (time.Time, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return time.Time{}, ErrUnparseable
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.location); err == nil {
			return t, nil
		}
	}

	lower := strings.ToLower(raw)
	base := baseTime.In(p.location)

	// Split off an optional trailing "at HH[:MM] [am|pm]" clause.
	dayExpr := lower
	hour, minute := -1, 0
	if m := atTimeRe.FindStringSubmatch(lower); m != nil {
		dayExpr = strings.TrimSpace(m[1])
		h, err := strconv.Atoi(m[2])
		if err != nil || h > 23 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
		}
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		switch m[4] {
		case "pm":
			if h < 12 {
				h += 12
			}
		case "am":
			if h == 12 {
				h = 0
			}
		}
		hour = h
	}

	day, err := p.resolveDay(dayExpr, base)
	if err != nil {
		return time.Time{}, err
	}

	if hour >= 0 {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.location), nil
	}
	return day, nil
}

// resolveDay maps a relative day expression to a concrete time.
func (p *Parser) resolveDay(expr string, base time.Time) (time.Time, error) {
	switch expr {
	case "today", "":
		return p.startOfDay(base), nil
	case "tomorrow":
		return p.startOfDay(base.AddDate(0, 0, 1)), nil
	case "yesterday":
		return p.startOfDay(base.AddDate(0, 0, -1)), nil
	}

	if m := inDurationRe.FindStringSubmatch(expr); m != nil {
		amount, _ := strconv.Atoi(m[1])
		switch {
		case strings.HasPrefix(m[2], "minute"):
			return base.Add(time.Duration(amount) * time.Minute), nil
		case strings.HasPrefix(m[2], "hour"):
			return base.Add(time.Duration(amount) * time.Hour), nil
		case strings.HasPrefix(m[2], "day"):
			return p.startOfDay(base.AddDate(0, 0, amount)), nil
		case strings.HasPrefix(m[2], "week"):
			return p.startOfDay(base.AddDate(0, 0, amount*7)), nil
		default:
			return p.startOfDay(base.AddDate(0, amount, 0)), nil
		}
	}

	if name, ok := strings.CutPrefix(expr, "next "); ok {
		return p.nextWeekday(name, base)
	}
	if wd, ok := weekdays[expr]; ok {
		return p.upcomingWeekday(wd, base), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, expr)
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func (p *Parser) nextWeekday(name string, base time.Time) (time.Time, error) {
	wd, ok := weekdays[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown weekday %q", ErrUnparseable, name)
	}
	return p.upcomingWeekday(wd, base), nil
}

func (p *Parser) upcomingWeekday(wd time.Weekday, base time.Time) time.Time {
	daysUntil := int(wd - base.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return p.startOfDay(base.AddDate(0, 0, daysUntil))
}

func (p *Parser) startOfDay(t time.Time) time.Time {
	t = t.In(p.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.location)
}

// EndOfDay returns 23:59:59 of the given day.
func (p *Parser) EndOfDay(t time.Time) time.Time {
	t = p.startOfDay(t)
	return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}
