/*
Package qualifica is a deterministic lead qualification engine for conversational channels.

A tenant configures a catalog of questions, each carrying Hot, Warm and Cold trigger
phrases and a weight. Every answer received from an end user advances a Session by one
question: the answer is classified, weighted points are added to the score, and the
engine either returns the next question or the final Hot/Warm/Cold classification.

# Concept

The engine is a pure function over values. It receives the prior Session, the catalog
and the raw answer, and returns a Result holding the next Outcome and the Session to
persist. It never reads or writes storage, so the same input always yields the same
output. Storage, locking and transports live in adapters (see pkg/qualifier for the
stateful service and pkg/adapters for stores, HTTP and MCP).

# Concurrency

Two answers for the same conversation must not both read the same prior Session. That
guarantee belongs to the caller: pkg/session.Manager serializes read-modify-write per
conversation, optionally across replicas through a distributed lock.

# Usage

	eng := qualifica.New()

	catalog := domain.Catalog{
		{Order: 0, Text: "Do you plan to buy this month?", HotCriteria: "yes|sure", ColdCriteria: "no"},
	}

	res := eng.Advance(ctx, domain.Request{
		TenantID:       "acme",
		ConversationID: "5511999999999@s.whatsapp.net",
		Catalog:        catalog,
	})
	// res.Outcome.Kind == domain.OutcomeAskNext

	prior := res.Session
	res = eng.Advance(ctx, domain.Request{
		TenantID:       "acme",
		ConversationID: "5511999999999",
		RawAnswer:      "yes, sure",
		Catalog:        catalog,
		PriorSession:   &prior,
	})
	// res.Outcome.Kind == domain.OutcomeCompleted
*/
package qualifica
