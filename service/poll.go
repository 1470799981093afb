package service

import (
	"context"
	"time"
)

// Poll calls fn every interval until it reports done, returns an error or ctx
// is cancelled. Calls never overlap.
func Poll(ctx context.Context, interval time.Duration, fn func(ctx context.Context) (bool, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			done, err := fn(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
