package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DelayInsight/src/config"
)

func TestScheduledJobs(t *testing.T) {
	var cfg config.Config
	assert.Empty(t, scheduledJobs(&cfg))

	cfg.ScheduleInterval = config.Duration(time.Hour)
	jobs := scheduledJobs(&cfg)
	require.Len(t, jobs, 1)
	assert.Equal(t, jobAnalysis, jobs[0].kind)
	assert.Equal(t, "@every 1h0m0s", jobs[0].spec)

	cfg.Email.Server = "imap.example.com:993"
	cfg.Email.Username = "analyst"
	cfg.Email.CheckInterval = config.Duration(5 * time.Minute)
	jobs = scheduledJobs(&cfg)
	require.Len(t, jobs, 2)
	assert.Equal(t, jobMailboxPoll, jobs[1].kind)
	assert.Equal(t, "@every 5m0s", jobs[1].spec)

	// The poll interval alone is not enough without credentials.
	cfg.Email.Username = ""
	assert.Len(t, scheduledJobs(&cfg), 1)
}
