package cache

import "golang.org/x/sync/singleflight"

// flightGroup guarantees at-most-one loader per key is running at any time
// within this process, per §4.B/§5 "at-most-one loading". A thin generic
// wrapper over golang.org/x/sync/singleflight.Group, which only speaks
// `any`, so callers keep the typed V result singleflight itself can't give
// them.
type flightGroup[V any] struct {
	group singleflight.Group
}

func newFlightGroup[V any]() *flightGroup[V] {
	return &flightGroup[V]{}
}

// do runs fn for key if no call for key is already in flight; otherwise it
// waits for the in-flight call and returns its result. fn runs on the first
// caller's goroutine, and Cache.GetOrLoad hands the loader that caller's
// context: canceling it cancels the shared load, every waiter receives the
// resulting error, and nothing is cached.
func (g *flightGroup[V]) do(key string, fn func() (V, error)) (V, error) {
	v, err, _ := g.group.Do(key, func() (any, error) {
		return fn()
	})
	result, _ := v.(V)
	return result, err
}
