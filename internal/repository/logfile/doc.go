// Package logfile persists readings to append-only text logs.
//
// Files are opened in append mode for every write and never truncated, so
// restarting a monitor only adds lines. Each line is self-contained.
package logfile
