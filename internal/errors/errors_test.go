package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *E
		expected string
	}{
		{
			name:     "message only",
			err:      New(Configuration, "user identity is unknown"),
			expected: "configuration: user identity is unknown",
		},
		{
			name:     "wrapped cause",
			err:      Wrap(Connectivity, "transport ended abnormally", io.ErrUnexpectedEOF),
			expected: "connectivity: transport ended abnormally: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestE_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("scan failed: %w", Wrap(Connectivity, "remote closed", io.ErrUnexpectedEOF))

	require.ErrorIs(t, err, ErrConnectivity)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.NotErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, Connectivity, KindOf(err))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(stderrors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
