/*
Package simulator implements the worker control loop.

# State machine

	bootstrap ──▶ polling ⇄ executing ──▶ ... ──▶ stopped

bootstrap loads the persisted worker identity (registering once, through the
resilient dispatcher client, if the installation is new), creates the report
areas and resolves any leftovers from an unclean shutdown. The loop then
alternates between polling and executing until the Run context is cancelled.

# Failure semantics

  - Connectivity faults never reach this package: the resilient dispatcher
    client absorbs them with indefinite retry.
  - A logical dispatcher fault at the polling site is logged and the poll is
    repeated immediately; polling has no side effects.
  - An engine failure archives the partial outputs and log, skips the
    completion notification, and moves on to the next poll. It is never fatal.
  - Only a process-level kill interrupts an execution; the startup recovery
    in pkg/reports exists for exactly that case.

# Shutdown

Shutdown is cooperative. Cancellation is observed at the poll wait, the
post-failure pause and the notification retries, never during an engine run:
a simulation in flight always runs to completion before Run returns.
*/
package simulator
