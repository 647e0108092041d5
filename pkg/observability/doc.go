/*
Package observability turns engine lifecycle events into metrics and logs.

Metrics registers qualifica_* collectors on a prometheus registry and exposes them as
domain.LifecycleHooks. LoggingHooks writes the same events to a slog.Logger, and
Combine fans one event out to several hook sets.
*/
package observability
