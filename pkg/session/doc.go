/*
Package session implements per-session serialization on top of a ports.StateStore.

Requests against the same session ID run one at a time; different sessions run
concurrently. An optional ports.DistributedLocker extends the guarantee across
replicas sharing one store.
*/
package session
