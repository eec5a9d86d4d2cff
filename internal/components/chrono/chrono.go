package chrono

import (
	"context"
	"time"
)

var jst = time.FixedZone("Asia/Tokyo", 9*60*60)

// JST returns the [*time.Location] the remote ledger renders its dates in.
func JST() *time.Location {
	return jst
}

// API is the interface that anything depending on the system clock should use.
type API interface {
	// Now returns the current time in JST.
	Now() time.Time
	// Sleep blocks for the duration d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardImpl is the standard implementation of API using the standard library.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now().In(jst)
}

func (StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
