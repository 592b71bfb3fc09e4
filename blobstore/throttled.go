package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore wraps a Store and limits transfer bandwidth with a
// token bucket, one token per byte. Useful when snapshot uploads share
// a link with latency-sensitive traffic.
type ThrottledStore struct {
	inner   Store
	limiter *rate.Limiter
}

// NewThrottledStore wraps inner with the given byte-per-second limiter.
func NewThrottledStore(inner Store, limiter *rate.Limiter) *ThrottledStore {
	return &ThrottledStore{inner: inner, limiter: limiter}
}

// wait reserves n bytes of bandwidth, in bursts the limiter allows.
func (s *ThrottledStore) wait(ctx context.Context, n int) error {
	burst := s.limiter.Burst()
	if burst <= 0 {
		return s.limiter.Wait(ctx)
	}
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Put writes a blob after reserving its size from the bandwidth budget.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Get reads a blob, charging its size to the bandwidth budget.
func (s *ThrottledStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a blob. Deletes are not rate limited.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List lists blobs. Listings are not rate limited.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
