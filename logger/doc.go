// Package logger provides structured logging for butler using zerolog.
//
// It supports JSON and console output, level configuration, the -s/-v
// verbosity scale of the command line, and component-scoped loggers with
// structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("runner")
//	log.Info("task completed", logger.Fields(logger.FieldTask, "build"))
package logger
