/*
Package filecheckpoint keeps rollback points for the files of AI builder sessions.

# Overview

The builder edits a project as a set of files, a map from path to content.
After each batch of edits it records a checkpoint; later the user can roll
back to any retained checkpoint or browse the timeline. Each session keeps
its newest 50 checkpoints (configurable); older ones are evicted first.

The checkpoint subpackage holds the history itself, a plain data structure
with no locking and no I/O. This package wraps one history per session
with locking, structured logging, OpenTelemetry metrics and tracing, and
optional persistence through an archive.Store.

# Basic Usage

	m, err := filecheckpoint.New()
	if err != nil {
	    log.Fatal(err)
	}
	defer m.Close()

	cp, _ := m.Create(ctx, "session-1", checkpoint.Files{"app.ts": "v1"}, "initial")
	m.Create(ctx, "session-1", checkpoint.Files{"app.ts": "v2"}, "add router")

	files, err := m.Restore(ctx, "session-1", cp.ID)
	if errors.Is(err, filecheckpoint.ErrCheckpointNotFound) {
	    // evicted: show "checkpoint no longer available"
	}

# Persistence

With an archive, every checkpoint is compressed and saved as it is
created, and evicted checkpoints are deleted from the archive too. After a
restart, Resume rebuilds a session from the archive:

	store, _ := archive.NewSQLiteStore("./checkpoints.db")
	m, _ := filecheckpoint.New(filecheckpoint.WithArchive(store))
	n, err := m.Resume(ctx, "session-1")

# Configuration

FromConfig builds a Manager from a config.Config loaded from YAML or JSON:

	cfg, err := config.FromFile("builder.yaml")
	m, err := filecheckpoint.FromConfig(cfg)

# Errors

Not-found is reported with ErrCheckpointNotFound and is a normal outcome.
Archive failures are wrapped in *ArchiveError; by default Create only logs
them, see WithArchiveFailureFatal.
*/
package filecheckpoint
