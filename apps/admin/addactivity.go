package main

import (
	"context"
	"time"

	"github.com/appredator/backend/core/activity"
)

// addActivity creates a time-windowed activity. The window comes in as split
// date and clock fields and is combined into UTC instants at this boundary.
func (cli *commandLine) addActivity(kind, title, date, from, to string) error {
	na := activity.NewActivity{Kind: kind, Title: title}
	if err := na.Validate(); err != nil {
		return err
	}

	var startAt, endAt *time.Time
	if from != "" {
		t, err := activity.CombineDateTime(date, from, time.UTC)
		if err != nil {
			return err
		}
		startAt = &t
	}
	if to != "" {
		t, err := activity.CombineDateTime(date, to, time.UTC)
		if err != nil {
			return err
		}
		endAt = &t
	}

	now := time.Now().UTC()
	_, err := cli.actRepo.CreateActivity(context.Background(), activity.Activity{
		Kind:      na.Kind,
		Title:     na.Title,
		Active:    true,
		StartAt:   startAt,
		EndAt:     endAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
