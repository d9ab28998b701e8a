// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package events publishes sync outcomes on a Watermill message bus.
//
// Jobs call Publish with one of the payload types below; publishing is
// fire-and-forget and never changes a job's result. The bus runs in process
// (gochannel) by default or over core NATS for other services to consume.
package events

import (
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

// Topics.
const (
	TopicContestCreated   = "contest.created"
	TopicContestEnded     = "contest.ended"
	TopicRatingsUpdated   = "ratings.updated"
	TopicActivityRecorded = "activity.recorded"
)

// Topics lists every topic the service publishes.
var Topics = []string{TopicContestCreated, TopicContestEnded, TopicRatingsUpdated, TopicActivityRecorded}

// Metadata keys set on every message.
const (
	MetadataJob   = "job"
	MetadataRunID = "run_id"
)

// ContestCreated is published when a contest is first stored.
type ContestCreated struct {
	ContestID string          `json:"contestId"`
	Name      string          `json:"name"`
	Platform  models.Platform `json:"platform"`
	StartTime time.Time       `json:"startTime"`
	Status    string          `json:"status"`
	Link      string          `json:"link"`
}

// ContestEnded is published when a contest moves from upcoming to past.
type ContestEnded struct {
	ContestID string          `json:"contestId"`
	Name      string          `json:"name"`
	Platform  models.Platform `json:"platform"`
	EndTime   time.Time       `json:"endTime"`
	Solutions int             `json:"solutions"`
}

// RatingsUpdated summarizes one rating sync run.
type RatingsUpdated struct {
	Users     int       `json:"users"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityRecorded summarizes one activity sync run.
type ActivityRecorded struct {
	Date        string `json:"date"`
	Users       int    `json:"users"`
	Recorded    int    `json:"recorded"`
	Failed      int    `json:"failed"`
	TotalSolved int    `json:"totalSolved"`
}

// NewContestCreated builds the payload for c.
func NewContestCreated(c *models.Contest) ContestCreated {
	return ContestCreated{
		ContestID: c.ID,
		Name:      c.Name,
		Platform:  c.Platform,
		StartTime: c.StartTime,
		Status:    string(c.Status),
		Link:      c.Link,
	}
}

// NewContestEnded builds the payload for c.
func NewContestEnded(c *models.Contest) ContestEnded {
	return ContestEnded{
		ContestID: c.ID,
		Name:      c.Name,
		Platform:  c.Platform,
		EndTime:   c.EndTime(),
		Solutions: len(c.Solutions),
	}
}
