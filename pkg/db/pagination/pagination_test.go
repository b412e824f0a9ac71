package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	encoded, err := EncodeCursor(Cursor{CreatedAt: "2026-08-31T10:00:00Z", ID: "vid-1"})
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, "2026-08-31T10:00:00Z", decoded.CreatedAt)
	require.Equal(t, "vid-1", decoded.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	require.Error(t, err)
}
