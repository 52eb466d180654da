/*
Package dispatcher implements the client side of the dispatcher RPC protocol
and the connection-resilience layer that every coordinator call goes through.

# Architecture

	┌───────────────────── DISPATCHER ACCESS ─────────────────────┐
	│                                                              │
	│   control loop                                               │
	│        │   Register / NextSimulation / NotifyFinished        │
	│        ▼                                                     │
	│   ┌──────────────┐   connectivity fault:                     │
	│   │  Resilient   │   log + fixed back-off + retry forever    │
	│   │ (RetryPolicy)│   logical fault: propagate immediately    │
	│   └──────┬───────┘                                           │
	│          ▼                                                   │
	│   ┌──────────────┐                                           │
	│   │  HTTPClient  │   JSON-RPC 2.0 over HTTP, one attempt     │
	│   └──────┬───────┘                                           │
	│          ▼                                                   │
	│     dispatcher                                               │
	│                                                              │
	└──────────────────────────────────────────────────────────────┘

# Fault taxonomy

Transport failures (DNS resolution, refused or reset connections, timeouts,
any other wire I/O error) are wrapped in ConnectivityError and absorbed by
Resilient: the call blocks and retries until the dispatcher answers. A
JSON-RPC error object means the dispatcher executed the call and rejected it;
that is a *Fault and is returned to the caller at once, since retrying a
logically rejected call can never succeed.

NextSimulation returning (nil, nil) is the third, entirely normal outcome:
the simulation queue is empty.

All three methods share the same retry policy; none of them is special-cased.
The back-off wait honors context cancellation so a shutdown request is not
stuck behind an unreachable dispatcher.
*/
package dispatcher
