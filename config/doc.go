// Package config loads the settings of the dupnum command.
//
// Settings come from, in increasing order of precedence, the defaults, an
// optional YAML file (dupnum.yaml in the working directory unless a path is
// given), DUPNUM_* environment variables and command line flags:
//
//	memory:
//	  budget: 2MiB        # DUPNUM_MEMORY_BUDGET, --memory-budget
//	  ceiling: 2MiB       # DUPNUM_MEMORY_CEILING, --memory-ceiling
//	  max_runs: 512       # DUPNUM_MEMORY_MAX_RUNS, --max-runs
//	run:
//	  format: text        # text, sstable or cbor
//	  compression: none   # none, zstd or s2
//	  temp_dir: ""
//	merge:
//	  strategy: heap      # heap or loser
//	output:
//	  quiet: false
//	  stats: false
//	log:
//	  level: info
//	  format: text        # text or json
//
// Config.Options turns the result into dupnum options.
package config
