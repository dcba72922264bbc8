package engine

import (
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// InputError reports a request the engine cannot score, such as a nil profile.
type InputError struct {
	Field   string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

func requirePair(profile *types.CandidateProfile, job *types.JobRequirement) error {
	if profile == nil {
		return &InputError{Field: "profile", Message: "candidate profile is required"}
	}
	if job == nil {
		return &InputError{Field: "job", Message: "job requirement is required"}
	}
	return nil
}
