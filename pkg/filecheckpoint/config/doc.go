/*
Package config loads checkpoint manager settings from YAML or JSON.

# File Format

	capacity: 50
	archive:
	  driver: sqlite          # none | memory | sqlite
	  path: ./checkpoints.db
	  compression_level: 2    # 1 (fastest) .. 4 (smallest)
	observability:
	  metrics: true
	  tracing: false
	log:
	  level: info

Keys that are left out keep the values from Default. Unknown keys are
rejected so that typos surface at startup.

# Loading

	cfg, err := config.FromFile("builder.yaml")
	if err != nil {
	    log.Fatal(err)
	}

FromFile, FromYAML and FromJSON all validate the result; a Config built
by hand should be checked with Validate before use.
*/
package config
