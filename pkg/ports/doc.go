/*
Package ports defines the interfaces that decouple the adflow core from the outside world.

# Driven ports

  - StateStore: Persists and loads session State (memory, LRU, Redis, file).
  - DistributedLocker: Serializes access to a session across replicas.
  - Collaborators: One narrow interface per external generator (ingestion, analysis,
    scripts, images, voice, avatar video, ad platform, intent classification).

# Driving ports

  - Orchestrator: What transports (HTTP, MCP, CLI) call to run a request.
*/
package ports
