package logging

// Field names for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run settings.
	FieldDryRun   = "dry_run"
	FieldJobs     = "jobs"
	FieldEnvelope = "envelope"
	FieldRules    = "rules"

	// Per-file and per-site outcomes.
	FieldOutcome  = "outcome"
	FieldTemplate = "template"
	FieldLine     = "line"
	FieldStatus   = "status"
	FieldReason   = "reason"
	FieldEvent    = "event"

	// Run totals.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesChanged    = "files_changed"
	FieldFilesWritten    = "files_written"
	FieldSitesRewritten  = "sites_rewritten"

	// Build info.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
