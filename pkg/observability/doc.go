/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are delivered as domain.LifecycleHooks, so they can be combined with
Merge and handed to the executor and the engine.
*/
package observability
