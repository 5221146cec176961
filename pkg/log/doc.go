/*
Package log provides structured logging for Warden built on zerolog.

Init configures the global logger once at startup (console output for
interactive use, JSON for log shipping); components derive child loggers
with WithComponent so every line carries its origin.
*/
package log
