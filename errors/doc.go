// Package errors provides the error taxonomy shared by the task registry,
// the execution engine and their collaborators.
//
// Every failure is an *AppError carrying a machine-readable ErrorCode and
// the exit code the command line front end should use. Sentinels such as
// ErrCycleDetected match any AppError with the same code through
// errors.Is.
package errors
