// Package notify fans operational alerts out to chat channels (Discord, Slack)
// without blocking the caller. Alerts report newsletter dispatches and feed
// import runs to the editorial team.
package notify

import (
	"fmt"
	"strconv"
	"time"

	"byte-highlight/internal/domain/entity"
)

// Level is the severity of an alert.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Field is a short labelled value rendered next to the alert text.
type Field struct {
	Name  string
	Value string
}

// Alert is a channel-agnostic message.
type Alert struct {
	Title      string
	Text       string
	Level      Level
	Fields     []Field
	OccurredAt time.Time
}

// Validate checks the fields every channel needs.
func (a Alert) Validate() error {
	if a.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAlert)
	}
	return nil
}

// DispatchAlert describes a recorded newsletter dispatch.
func DispatchAlert(log *entity.SendLog) Alert {
	level := LevelInfo
	title := "Newsletter sent"
	switch {
	case log.Error != "":
		level = LevelError
		title = "Newsletter dispatch failed"
	case log.Failed > 0:
		level = LevelWarning
		title = "Newsletter sent with failures"
	}
	if log.TestMode {
		title += " (test mode)"
	}

	a := Alert{
		Title: title,
		Text:  log.Subject,
		Level: level,
		Fields: []Field{
			{Name: "Mode", Value: string(log.Mode)},
			{Name: "Recipients", Value: strconv.Itoa(log.Recipients)},
			{Name: "Sent", Value: strconv.Itoa(log.Sent)},
			{Name: "Failed", Value: strconv.Itoa(log.Failed)},
		},
		OccurredAt: log.CreatedAt,
	}
	if log.Error != "" {
		a.Fields = append(a.Fields, Field{Name: "Error", Value: log.Error})
	}
	return a
}

// ImportAlert summarises one feed import run.
func ImportAlert(feeds, inserted, duplicated, invalid, failedFeeds int, at time.Time) Alert {
	level := LevelInfo
	if failedFeeds > 0 {
		level = LevelWarning
	}
	return Alert{
		Title: "Article import finished",
		Text:  fmt.Sprintf("%d new articles from %d feeds", inserted, feeds),
		Level: level,
		Fields: []Field{
			{Name: "Inserted", Value: strconv.Itoa(inserted)},
			{Name: "Duplicated", Value: strconv.Itoa(duplicated)},
			{Name: "Invalid", Value: strconv.Itoa(invalid)},
			{Name: "Failed feeds", Value: strconv.Itoa(failedFeeds)},
		},
		OccurredAt: at,
	}
}
