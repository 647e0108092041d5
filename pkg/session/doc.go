/*
Package session serializes access to conversation sessions.

The engine is pure, so two answers for the same conversation arriving together would
both read the same prior Session and one update would be lost. Manager closes that gap
with a ref-counted per-key mutex and, for multi-replica deployments, an optional
ports.DistributedLocker held for the whole read-modify-write.
*/
package session
