// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and turns
// non-zero exit codes into CommandFailedError values. ProcessRunner is the
// default os/exec backed runner. The git CLI repository backend in
// internal/changes uses it to query status and diffs.
package execshell
