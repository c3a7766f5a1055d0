package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//EduTrack//Calendar//EN"

// ExportICS renders the view as an iCalendar document.
// Entries without a known time become all-day events.
func ExportICS(view View, calName string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	if calName != "" {
		cal.SetName(calName)
	}

	for _, date := range view.Dates() {
		for i, e := range view.Days[date] {
			evt := cal.AddEvent(entryUID(e, date, i))
			evt.SetDtStampTime(stamp.UTC())
			evt.SetSummary(e.Title)
			if e.Description != "" {
				evt.SetDescription(e.Description)
			}
			if e.Link != "" {
				evt.SetURL(e.Link)
			}
			if e.HasTime {
				evt.SetStartAt(e.SortKey)
				evt.SetEndAt(e.SortKey)
			} else {
				day := time.Date(e.SortKey.Year(), e.SortKey.Month(), e.SortKey.Day(), 0, 0, 0, 0, time.UTC)
				evt.SetAllDayStartAt(day)
				evt.SetAllDayEndAt(day.AddDate(0, 0, 1))
			}
		}
	}
	return cal.Serialize()
}

func entryUID(e Entry, date string, idx int) string {
	if e.EventID != "" {
		return e.EventID + "@edutrack"
	}
	return fmt.Sprintf("%s-%s-%d@edutrack", e.Kind, date, idx)
}
