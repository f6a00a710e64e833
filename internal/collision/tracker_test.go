package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	for _, name := range []string{"SRR000001", "SRR000002", "SRR000001", "NC_000913", "SRR000002"} {
		_, err := tracker.Track(name)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"SRR000001", "SRR000002", "NC_000913"}, tracker.Names())
	require.Equal(t, 3, tracker.Count())
	require.False(t, tracker.HasCollision())
}

func TestTracker_Track_ReportsNewNames(t *testing.T) {
	tracker := NewTracker()

	added, err := tracker.Track("SRR000001")
	require.NoError(t, err)
	require.True(t, added)

	added, err = tracker.Track("SRR000001")
	require.NoError(t, err)
	require.False(t, added)
}

func TestTracker_Track_EmptyName(t *testing.T) {
	tracker := NewTracker()

	_, err := tracker.Track("")

	require.ErrorIs(t, err, errs.ErrInvalidAccession)
	require.Equal(t, 0, tracker.Count())
}

func TestTracker_Collision(t *testing.T) {
	tracker := NewTracker()

	// force two names onto one hash
	require.True(t, tracker.track("SRR000001", 0x1234))
	require.True(t, tracker.track("SRR000002", 0x1234))
	require.True(t, tracker.HasCollision())
	require.False(t, tracker.track("SRR000002", 0x1234))
	require.False(t, tracker.track("SRR000001", 0x1234))

	require.Equal(t, []string{"SRR000001", "SRR000002"}, tracker.Names())
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	tracker.track("a", 1)
	tracker.track("b", 1)
	require.True(t, tracker.HasCollision())

	tracker.Reset()

	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	added, err := tracker.Track("a")
	require.NoError(t, err)
	require.True(t, added)
}
