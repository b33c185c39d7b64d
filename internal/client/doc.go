/*
Package client implements the event middleware pipeline and command dispatch
core of gateflow.

# Architecture Overview

Envelopes received from the gateway collaborator are published onto an
internal Watermill gochannel bus. A router handler consumes them in arrival
order and launches each dispatch as an independent task, so slow handlers
never block the pump and a failing dispatch never takes down its neighbors.

# Package Structure

  - client.go: Client wiring, registration surface, Start/Close, read pump
  - registry.go: pre-populated name registry and terminal registration
  - resolver.go: recursive middleware resolution with the Resolution sum type
  - dispatch.go: dispatch entry point, panic isolation, tracing, metrics
  - commands.go: command catalog, router, kwarg building, error recovery
  - reply.go: reply driver for single-shot and streaming command bodies
  - middleware.go: built-in middleware chain (ready, interaction_create)
  - metrics.go: Prometheus collectors

# Sub-packages

  - config/: client configuration with env loading and validation
  - errors/: sentinel errors
  - gateway/: websocket transport collaborator
  - ids/: ULID correlation IDs
  - jsoncodec/: JSON marshaling utilities
  - logging/: logger interface and adapters
  - objects/: wire shapes the dispatch core consumes
  - rest/: reply-send collaborator
  - throttle/: cooldown admission control
*/
package client
