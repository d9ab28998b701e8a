// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

// TriggerSource records what started a job run.
type TriggerSource string

const (
	TriggerInitial TriggerSource = "initial"
	TriggerCron    TriggerSource = "cron"
	TriggerAPI     TriggerSource = "api"
)
