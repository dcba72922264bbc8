package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoModel is returned when no trained model has been loaded or published.
	ErrNoModel = errors.New("no trained model available")
	// ErrTrainingInProgress is returned when a retrain is requested while one is running.
	ErrTrainingInProgress = errors.New("training already in progress")
	// ErrNotSaved is wrapped when a trained model was published but the store
	// rejected it.
	ErrNotSaved = errors.New("model published but not saved")
)

// Error represents an error that occurs while training, predicting or persisting a model.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
