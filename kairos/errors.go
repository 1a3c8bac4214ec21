package kairos

import "fmt"

// InvalidLevelError reports a severity name that is not one of the
// recognized levels. It is returned before any timing starts.
type InvalidLevelError struct {
	Level string
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("kairos: invalid level %q (want debug, info, warn or error)", e.Level)
}

// UnknownOptionError reports a configuration key that the tracker does
// not recognize. Unknown keys are rejected rather than silently ignored
// so that typos surface at configure time.
type UnknownOptionError struct {
	Key string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("kairos: unknown configuration option %q", e.Key)
}

// SinkUnavailableError reports a file destination that could not be
// prepared at registration time.
type SinkUnavailableError struct {
	Path string
	Err  error
}

func (e *SinkUnavailableError) Error() string {
	return fmt.Sprintf("kairos: sink %q unavailable: %v", e.Path, e.Err)
}

func (e *SinkUnavailableError) Unwrap() error {
	return e.Err
}
