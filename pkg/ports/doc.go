/*
Package ports defines the driven ports (interfaces) of the qualification engine.

These interfaces decouple the engine and the stateful service from concrete storage,
catalog sources and locking backends.

# Key Interfaces

  - Advancer: the engine operation consumed by HTTP, MCP and the qualifier service.
  - SessionStore: persists conversation Sessions keyed by domain.SessionKey.
  - CatalogSource: loads the question catalog of a tenant.
  - DistributedLocker: coordinates per-conversation access across replicas.
*/
package ports
