package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{name: "plain error", err: errors.New("boom"), want: apperror.KindInternal},
		{name: "not configured", err: apperror.NotConfigured("run scorecard migration"), want: apperror.KindNotConfigured},
		{name: "wrapped integrity", err: fmt.Errorf("delete: %w", apperror.Integrity("has time entries")), want: apperror.KindIntegrity},
		{name: "upstream", err: apperror.Upstream("xero", errors.New("timeout")), want: apperror.KindUpstreamFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperror.KindOf(tc.err))
		})
	}
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal server error", apperror.PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "not configured: add a monday board", apperror.PublicMessage(apperror.NotConfigured("add a monday board")))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := apperror.Upstream("monday", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "monday request failed: timeout", err.Error())
}
