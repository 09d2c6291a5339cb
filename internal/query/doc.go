// Package query filters cached workshops for display and export.
//
// Searches run against the local cache only; the portal is never contacted. Three filters
// exist, and an exact workshop id always wins over the others:
//
//   - ByExactID: every cached row with that id (the portal occasionally lists duplicates)
//   - ByPhraseAndDateRange: phrase match, then start date within an inclusive day range
//   - ByPhrase: case-insensitive literal match on the workshop name
//
// Each search records running totals (workshop count and the sum of sign-ups) that can be
// read back with Engine.Totals.
//
// Example usage:
//
//	engine := query.New(store)
//	workshops, err := engine.ByPhrase(ctx, "c++")
//	fmt.Println(engine.Totals().NumberOfParticipants)
//	fmt.Println(query.EmailsFor(workshops))
package query
