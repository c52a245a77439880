// Package calendar exports scheduled activities as iCalendar (RFC 5545) documents.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/slotify/internal/activity"
)

// ProductID identifies slotify as the producer of exported calendars.
const ProductID = "-//slotify//planner//EN"

// uidDomain is appended to activity ids to form globally unique event UIDs.
const uidDomain = "slotify.local"

// Build returns a calendar holding one VEVENT per activity with a start time.
// Backlog activities have no place on a calendar and are left out.
func Build(name string, activities []activity.Activity, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, a := range activities {
		if !a.HasStart() {
			continue
		}
		addEvent(cal, a, now)
	}
	return cal
}

// Write serializes the calendar built from activities to w.
func Write(w io.Writer, name string, activities []activity.Activity, now time.Time) error {
	if err := Build(name, activities, now).SerializeTo(w); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// UID returns the event UID used for an activity id.
func UID(activityID string) string {
	return activityID + "@" + uidDomain
}

func addEvent(cal *ical.Calendar, a activity.Activity, now time.Time) {
	ev := cal.AddEvent(UID(a.ID))
	ev.SetDtStampTime(now.UTC())
	if !a.CreatedAt.IsZero() {
		ev.SetCreatedTime(a.CreatedAt.UTC())
	}
	if !a.UpdatedAt.IsZero() {
		ev.SetModifiedAt(a.UpdatedAt.UTC())
	}
	ev.SetStartAt(a.StartTime.UTC())
	ev.SetEndAt(a.EndTime().UTC())
	ev.SetSummary(a.Title)
	if a.Description != "" {
		ev.SetDescription(a.Description)
	}
	ev.SetStatus(eventStatus(a.Status))
	ev.SetProperty(ical.ComponentPropertyCategories, string(a.Type))
	ev.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(priorityRank(a.Priority)))
	ev.SetProperty(ical.ComponentProperty("COLOR"), a.DisplayColor())
}

func eventStatus(s activity.Status) ical.ObjectStatus {
	if s == activity.StatusSkipped {
		return ical.ObjectStatusCancelled
	}
	return ical.ObjectStatusConfirmed
}

// priorityRank maps priorities onto the 1 (highest) to 9 (lowest) iCalendar scale.
func priorityRank(p activity.Priority) int {
	switch p {
	case activity.PriorityHigh:
		return 1
	case activity.PriorityLow:
		return 9
	default:
		return 5
	}
}
