// Package temporal turns natural-language time phrases into concrete date
// ranges and scores how well a document's timestamp fits such a range.
//
// Resolution is calendar based: weeks start on Monday, months and years are
// whole calendar periods in the resolver's location, and every returned
// bound is in UTC. Phrases that refer to context the resolver cannot see
// ("before the meeting") produce a RangeUnresolvedContext range so that
// scoring stays neutral instead of guessing.
//
// Basic usage:
//
//	r, _ := temporal.NewResolver(temporal.WithLocation(loc))
//	rng := r.Resolve("notes from last week", time.Now())
//	score := temporal.Score(doc.Timestamp, rng, temporal.DefaultHalfLife)
package temporal
