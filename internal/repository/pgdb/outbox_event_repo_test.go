package pgdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimEventsQuery_ReclaimsStaleProcessing(t *testing.T) {
	assert.Contains(t, claimEventsQuery, "WHERE status = $2")
	assert.Contains(t, claimEventsQuery, "OR (status = $1 AND processing_started_at < NOW() - make_interval(secs => $4))")
	assert.Contains(t, claimEventsQuery, "FOR UPDATE SKIP LOCKED")
	assert.Positive(t, ProcessingVisibilityTimeout.Seconds())
}
