// Package cache provides a bounded, thread-safe LRU cache.
//
// It exists for hot-path memoization where the key space is attacker
// controlled (user-agent strings, header values) and must not grow without
// bound:
//
//	verdicts := cache.New[string, Verdict](10_000)
//	v := verdicts.GetOrLoad(ua, classify)
//
// Every operation is O(1). When an insert would exceed the capacity the
// least recently used entry is dropped.
package cache
