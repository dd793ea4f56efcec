package app

import "fmt"

// FailureClass buckets a cycle failure into the taxonomy the process exit
// code is derived from. The pipeline reports failures, it never panics or
// crashes the process.
type FailureClass int

const (
	FailureConfig FailureClass = iota + 1
	FailureLiveness
	FailureAuth
	FailureFetch
	FailureConflict
	FailureTransport
)

func (c FailureClass) String() string {
	switch c {
	case FailureConfig:
		return "configuration"
	case FailureLiveness:
		return "liveness"
	case FailureAuth:
		return "authentication"
	case FailureFetch:
		return "fetch"
	case FailureConflict:
		return "conflict"
	case FailureTransport:
		return "transport"
	}
	return "unknown"
}

// ExitCode maps the class to a distinct process exit status so external
// monitoring can tell failure modes apart. 0 and 1 are left to the CLI layer.
func (c FailureClass) ExitCode() int {
	return int(c) + 1 // config=2, liveness=3, auth=4, fetch=5, conflict=6, transport=7
}

// Failure is the classified outcome of an aborted cycle.
type Failure struct {
	Class FailureClass
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %v", f.Class, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failure(class FailureClass, err error) *Failure {
	return &Failure{Class: class, Err: err}
}
