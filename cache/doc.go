// Package cache stores fully assembled solve results keyed by the
// canonicalized request identity.
//
// A Key is built with NewKey, which fills absent colors with the defaults
// so that a query sent with and without explicit default colors shares one
// entry. MemoryCache is an RWMutex-guarded map with no eviction unless a
// Policy TTL is set.
package cache
