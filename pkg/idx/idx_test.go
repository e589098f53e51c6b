package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.Len(t, a, 26)
	require.Less(t, a, b)
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	got, err := Parse("  " + id + " ")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)
	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTime(t *testing.T) {
	t.Parallel()

	id := New()
	require.WithinDuration(t, time.Now().UTC(), Time(id), time.Minute)
	require.True(t, Time("garbage").IsZero())
}
