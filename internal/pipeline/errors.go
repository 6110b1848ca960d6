package pipeline

import (
	"fmt"
)

// ErrorKind classifies a step failure by how the run reacts to it.
type ErrorKind int

const (
	// KindInput is a failure to fetch the weather report. Fatal; nothing
	// remote has been touched yet.
	KindInput ErrorKind = iota + 1
	// KindCompose is a decode or render failure. Recovered by rendering the
	// error image.
	KindCompose
	// KindNonCritical is a remote step whose failure is logged and skipped.
	KindNonCritical
	// KindCritical is a remote or local step whose failure aborts the run.
	KindCritical
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindCompose:
		return "compose"
	case KindNonCritical:
		return "non_critical"
	case KindCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Step names used in logs, metrics and StepError.
const (
	StepExtract        = "extract"
	StepDecode         = "decode"
	StepRender         = "render"
	StepEncode         = "encode"
	StepSave           = "save"
	StepPublish        = "publish"
	StepAuthenticate   = "authenticate"
	StepDeletePrevious = "delete_previous"
	StepUpload         = "upload"
	StepPostUpload     = "post_upload"
	StepFetchPlaylist  = "fetch_playlist"
	StepUpdatePlaylist = "update_playlist"
	StepDeploy         = "deploy"
)

// StepError records which step failed and how the failure is classified.
type StepError struct {
	Step string
	Kind ErrorKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Fatal reports whether the failure ends the run with a non-zero status.
func (e *StepError) Fatal() bool {
	return e.Kind == KindInput || e.Kind == KindCritical
}
