// Package redis provides a Redis-backed session store and distributed locker,
// for deployments where several replicas answer the same conversations.
package redis
