package logger

// Verbosity levels selected on the command line with -s and -v.
const (
	VerbositySilent = iota
	VerbosityError
	VerbosityWarning
	VerbosityInfo
	VerbosityPretty
	VerbosityDebug
	VerbosityTrace

	DefaultVerbosity = VerbosityPretty
)

// Verbosity clamps DefaultVerbosity shifted by verbose minus silent to the
// known range.
func Verbosity(verbose, silent int) int {
	return min(max(DefaultVerbosity+verbose-silent, VerbositySilent), VerbosityTrace)
}

// LevelForVerbosity maps a verbosity onto a logger level. Pretty is the
// info level with human formatted task output on top.
func LevelForVerbosity(v int) string {
	switch {
	case v <= VerbositySilent:
		return "disabled"
	case v == VerbosityError:
		return "error"
	case v == VerbosityWarning:
		return "warn"
	case v == VerbosityInfo, v == VerbosityPretty:
		return "info"
	case v == VerbosityDebug:
		return "debug"
	default:
		return "trace"
	}
}
