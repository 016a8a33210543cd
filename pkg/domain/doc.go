/*
Package domain contains the core domain models of the adflow orchestration core.

It defines the stage vocabulary, the navigation intents, and the per-session State
record. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Stage: One named step of the pipeline, plus the confirm_restart and complete control states.
  - Intent: The resolved navigation symbol driving the next stage decision.
  - State: The runtime snapshot of a session (current step, messages, stage payloads, campaign sub-state).
  - Request / Response: The transport-agnostic shape of one orchestration call.
  - StateDiff: A partial update emitted to streaming clients after each call.
*/
package domain
