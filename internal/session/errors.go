package session

import "errors"

// ValidationError reports a rejected upload. The message is shown to the
// user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PreconditionError reports an operation attempted before its inputs exist,
// such as requesting an effect with no image uploaded.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

var (
	// ErrSuperseded is returned to a caller whose request completed after a
	// newer request had already taken over the session.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrNoResult is returned by Download when nothing has been generated.
	ErrNoResult = errors.New("no generated image to download")
)

// genericRemoteError is the banner text when the invoker fails without a
// usable message.
const genericRemoteError = "Image generation failed. Please try again."
