package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// window is an open interval in minutes since midnight. end <= start means
// the window runs past midnight into the next day.
type window struct {
	start, end int
}

type hoursRule struct {
	days    [7]bool
	windows []window
}

// Schedule is a parsed opening-hours text.
type Schedule struct {
	always bool
	rules  []hoursRule
}

var (
	timeWindowRe = regexp.MustCompile(`(\d{1,2})(?:[:h](\d{2}))?h?\s*(?:-|–|as|a|ate)\s*(\d{1,2})(?:[:h](\d{2}))?h?`)
	dayTokenRe   = regexp.MustCompile(`\b(dom|seg|ter|qua|qui|sex|sab)[a-z]*`)
	alwaysRe     = regexp.MustCompile(`\b24\s*(?:h|horas)\b`)
	segmentSep   = regexp.MustCompile(`[,;|\n]+`)
)

var dayIndex = map[string]int{
	"dom": 0, "seg": 1, "ter": 2, "qua": 3, "qui": 4, "sex": 5, "sab": 6,
}

// ParseHours parses texts such as "Seg-Sex 08:00-18:00, Sáb 8h-12h",
// "Todos os dias 18h às 02h" or "24 horas". ok is false when nothing in
// the text could be understood.
func ParseHours(text string) (Schedule, bool) {
	s := fold(text)
	s = strings.NewReplacer("-feira", "", " feira", "").Replace(s)
	if strings.TrimSpace(s) == "" {
		return Schedule{}, false
	}

	var (
		sched   Schedule
		known   bool
		last    [7]bool
		have    bool
		pending [7]bool
	)
	for _, seg := range segmentSep.Split(s, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		dayPart := seg
		if i := strings.IndexAny(seg, "0123456789"); i >= 0 {
			dayPart = seg[:i]
		}
		days, ok := parseDays(dayPart)
		switch {
		case ok:
			for d, on := range pending {
				days[d] = days[d] || on
			}
			last, have = days, true
		case have:
			days = last
		default:
			days = allDays()
		}

		rule := hoursRule{days: days}
		for _, m := range timeWindowRe.FindAllStringSubmatch(seg, -1) {
			start, ok1 := clock(m[1], m[2])
			end, ok2 := clock(m[3], m[4])
			if !ok1 || !ok2 {
				continue
			}
			rule.windows = append(rule.windows, window{start: start, end: end})
		}
		if len(rule.windows) == 0 && alwaysRe.MatchString(seg) {
			rule.windows = append(rule.windows, window{start: 0, end: minutesPerDay})
			if !ok && !have {
				sched.always = true
			}
		}

		switch {
		case len(rule.windows) > 0:
			sched.rules = append(sched.rules, rule)
			pending = [7]bool{}
			known = true
		case strings.Contains(seg, "fechado"):
			// Explicitly closed days contribute no window.
			pending = [7]bool{}
			known = true
		case ok:
			// "Seg, Qua e Sex 8h-12h": days listed ahead of their window.
			pending = days
		}
	}
	return sched, known
}

// OpenAt reports whether the schedule is open at t. t is evaluated in its
// own location.
func (s Schedule) OpenAt(t time.Time) bool {
	if s.always {
		return true
	}
	day := int(t.Weekday())
	prev := (day + 6) % 7
	now := t.Hour()*60 + t.Minute()

	for _, r := range s.rules {
		for _, w := range r.windows {
			if w.end > w.start {
				if r.days[day] && now >= w.start && now < w.end {
					return true
				}
				continue
			}
			// Overnight.
			if r.days[day] && now >= w.start {
				return true
			}
			if r.days[prev] && now < w.end {
				return true
			}
		}
	}
	return false
}

func parseDays(s string) ([7]bool, bool) {
	var days [7]bool
	if strings.Contains(s, "todos os dias") || strings.Contains(s, "diariamente") || strings.Contains(s, "todo dia") {
		return allDays(), true
	}

	locs := dayTokenRe.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return days, false
	}
	for i, loc := range locs {
		d := dayIndex[s[loc[2]:loc[3]]]
		days[d] = true
		if i == 0 {
			continue
		}
		prev := locs[i-1]
		if isRangeSep(s[prev[1]:loc[0]]) {
			from := dayIndex[s[prev[2]:prev[3]]]
			for j := from; j != d; j = (j + 1) % 7 {
				days[j] = true
			}
		}
	}
	return days, true
}

func isRangeSep(s string) bool {
	s = strings.TrimSpace(s)
	return s == "-" || s == "–" || s == "a" || s == "as" || s == "ate"
}

func clock(h, m string) (int, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil || hour > 24 {
		return 0, false
	}
	minute := 0
	if m != "" {
		if minute, err = strconv.Atoi(m); err != nil || minute > 59 {
			return 0, false
		}
	}
	v := hour*60 + minute
	if v > minutesPerDay {
		return 0, false
	}
	return v, true
}

func allDays() [7]bool {
	return [7]bool{true, true, true, true, true, true, true}
}
