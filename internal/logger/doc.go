// Package logger wraps zap to offer a global sugared logger with a console
// encoder, context helpers (ToContext/FromContext/WithName/WithKV) and level
// parsing. Services carry the logger in their context so every line is tagged
// with the binary that produced it.
package logger
