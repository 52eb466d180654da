/*
Package config holds the worker configuration and the fixed layout of an
install dir.

Configuration is layered: built-in defaults, then the optional simulator.yaml
inside the install dir, then command line flags applied by the CLI. The yaml
file is entirely optional; a fresh install dir with nothing but the engine jar
and a topologies directory is a valid installation.

	dispatcher_addr: dispatcher.example.org
	dispatcher_port: 32014
	poll_interval: 10s
	retry_backoff: 10s
	recovery_policy: archive   # or "wipe"
	status_addr: 127.0.0.1:9155
	log_level: info

The Layout type names every fixed path inside the install dir:

	<install_dir>/
	├── topologies/            read-only simulation inputs
	├── reports/               managed by pkg/reports
	├── logs/                  per-simulation engine logs
	├── uuid.txt               worker identity, written once
	├── ssbgp-simulator.jar    the engine
	└── simulator.yaml         optional configuration
*/
package config
