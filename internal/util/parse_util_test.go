package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected time.Duration
		wantErr  bool
	}{
		{name: "go_duration_seconds", in: "10s", expected: 10 * time.Second},
		{name: "go_duration_compound", in: "1m30s", expected: 90 * time.Second},
		{name: "bare_integer_is_seconds", in: "30", expected: 30 * time.Second},
		{name: "zero", in: "0", expected: 0},
		{name: "padded", in: "  5s ", expected: 5 * time.Second},
		{name: "empty", in: "", wantErr: true},
		{name: "negative_integer", in: "-5", wantErr: true},
		{name: "negative_duration", in: "-5s", wantErr: true},
		{name: "garbage", in: "soon", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseInterval(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}
