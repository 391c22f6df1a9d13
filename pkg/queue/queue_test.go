package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	job, err := NewJob(JobTypeMediaDelete, MediaDeletePayload{Keys: []string{"media/a.png", "media/b.mp4"}})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobTypeMediaDelete, job.Type)
	assert.Zero(t, job.Attempt)

	raw, err := json.Marshal(job)
	require.NoError(t, err)
	var back Job
	require.NoError(t, json.Unmarshal(raw, &back))
	var payload MediaDeletePayload
	require.NoError(t, json.Unmarshal(back.Payload, &payload))
	assert.Equal(t, []string{"media/a.png", "media/b.mp4"}, payload.Keys)
}

func TestNewJobRejectsUnencodable(t *testing.T) {
	_, err := NewJob(JobTypeMediaDelete, make(chan int))
	assert.Error(t, err)
}
