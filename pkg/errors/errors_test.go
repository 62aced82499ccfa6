package timeline_errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"decode", fmt.Errorf("payload: %w", ErrDecode), false},
		{"duplicate", fmt.Errorf("insert: %w", ErrDuplicateInsert), false},
		{"unknown type", ErrUnknownEventType, false},
		{"island gone", fmt.Errorf("membership: %w", ErrNotFound), false},
		{"rate limited", ErrRateLimited, true},
		{"transient", fmt.Errorf("membership: %w", ErrTransient), true},
		{"anything else", fmt.Errorf("boom"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}
