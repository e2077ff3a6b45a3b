// Package subscription tracks the handlers registered on one
// connection.
//
// The registry maps generated subscription ids (sids) to message
// handlers. Ids are unique for the lifetime of the owning connection
// and are never reused. Insertion order is preserved for
// introspection.
//
// Unsubscribing deactivates the entry and drops the handler, but the
// sid stays known to the registry: a MSG frame that races an UNSUB is
// silently discarded by the dispatch loop, while a MSG for a sid this
// connection never issued is a protocol error.
package subscription
