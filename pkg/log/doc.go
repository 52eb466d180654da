/*
Package log provides structured logging for the simulation worker using
zerolog.

The package wraps zerolog to provide JSON or console structured logging with
configurable log levels and child loggers carrying standard fields. Components
never log through the global instance directly; each receives a child logger
at construction time:

	logger := log.WithComponent("dispatcher")
	client := dispatcher.NewHTTPClient(addr, logger)

Standard fields:

  - component     — package producing the entry (dispatcher, reports, ...)
  - worker_id     — identity assigned by the dispatcher
  - simulation_id — simulation the entry relates to

Init must be called once from main before any component is constructed.
*/
package log
