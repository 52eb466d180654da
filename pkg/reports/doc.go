/*
Package reports implements the crash-safe, directory-backed state machine
that tracks simulation data through its lifecycle.

# State machine

	                    ┌──────────────┐
	     engine writes  │   running/   │  shared area, one simulation
	    ──────────────▶ │              │  at a time
	                    └──────┬───────┘
	            exit 0         │         exit != 0
	        ┌──────────────────┴──────────────────┐
	        ▼                                     ▼
	┌────────────────┐                 ┌─────────────────────────┐
	│ complete/<id>/ │                 │ failed/<id>/<timestamp>/│
	│                │                 │ (log + partial outputs) │
	└────────────────┘                 └─────────────────────────┘

Transitions are plain directory renames. A simulation id present under
complete/ is durably finished: the engine is never run again for it, only the
dispatcher notification is repeated. That property is what makes the
execute-then-notify sequence safe to replay after a crash at any point.

# Startup recovery

A non-empty running area at startup means the previous process was killed
mid-simulation. Recover resolves it before the first poll, according to the
configured policy: archive (default) moves the leftovers to a
failed/Fail-<timestamp> entry, wipe deletes them. The Fail- prefix exists
because after a crash the id of the interrupted simulation is unknown.
*/
package reports
