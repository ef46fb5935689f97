package app

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAdminPassword(t *testing.T) {
	t.Run("configured password passes through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		pw, err := resolveAdminPassword("hunter2hunter2", logger)
		require.NoError(t, err)
		require.Equal(t, "hunter2hunter2", pw)
		require.Empty(t, buf.String())
	})

	t.Run("unset password is generated and logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		pw, err := resolveAdminPassword("", logger)
		require.NoError(t, err)
		require.NotEmpty(t, pw)
		require.Contains(t, buf.String(), pw)

		// Each startup gets its own value.
		other, err := resolveAdminPassword("", logger)
		require.NoError(t, err)
		require.NotEqual(t, pw, other)
	})
}
