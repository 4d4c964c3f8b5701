package feed

import (
	"time"

	"activityScope/internal/model"
)

// Section names.
const (
	SectionToday     = "today"
	SectionYesterday = "yesterday"
	SectionThisWeek  = "thisWeek"
	SectionMonth     = "month"
)

// Section is a display bucket. Events holds every event whose timestamp is at
// or after Start and before the Start of the previous section.
type Section struct {
	Name   string                `json:"name"`
	Start  time.Time             `json:"start"`
	Events []model.ActivityEvent `json:"events"`
}

// GroupByTime buckets a timestamp-descending event stream relative to now.
// Calendar boundaries are computed in now's location; weeks start on Sunday.
// Month sections are created as older events are reached, and sections with
// no events are omitted.
func GroupByTime(events []model.ActivityEvent, now time.Time) []Section {
	today := startOfDay(now)
	sections := []Section{
		{Name: SectionToday, Start: today},
		{Name: SectionYesterday, Start: today.AddDate(0, 0, -1)},
		{Name: SectionThisWeek, Start: today.AddDate(0, 0, -int(today.Weekday()))},
	}

	current := 0
	for _, event := range events {
		ts := event.Base().Timestamp.In(now.Location())
		for current < len(sections) && sections[current].Start.After(ts) {
			current++
		}
		if current == len(sections) {
			sections = append(sections, Section{Name: SectionMonth, Start: startOfMonth(ts)})
		}
		sections[current].Events = append(sections[current].Events, event)
	}

	out := sections[:0]
	for _, section := range sections {
		if len(section.Events) > 0 {
			out = append(out, section)
		}
	}
	return out
}

// GroupPages flattens pages in order and groups the result.
func GroupPages(pages []model.Page, now time.Time) []Section {
	var events []model.ActivityEvent
	for _, page := range pages {
		events = append(events, page.Events...)
	}
	return GroupByTime(events, now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
