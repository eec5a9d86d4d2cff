package chrono

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStandardImpl().Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStandardSleep(t *testing.T) {
	err := NewStandardImpl().Sleep(context.Background(), time.Millisecond)
	require.NoError(t, err)
}

func TestNowIsJST(t *testing.T) {
	_, offset := NewStandardImpl().Now().Zone()
	require.Equal(t, 9*60*60, offset)
}
