// Package cache provides the in-memory store that holds resolved secrets.
//
// Entries never expire. A value stays cached until it is deleted or the whole
// cache is cleared, which is the only invalidation an operator has. Values are
// plain strings and are never logged by this package.
package cache
