// Package storage provides a concurrency-safe, mutable in-memory source whose
// changes are observed by every chain that reads it.
package storage
