package alert

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"capture-recall/internal/intent"
	"capture-recall/internal/memory"
	"capture-recall/internal/reachability"
	"capture-recall/pkg/gcalendar"
	"capture-recall/pkg/retry"
	"capture-recall/pkg/transcribe"
)

// DisplayableError is the only error shape the UI ever sees. It is always
// derived from a richer underlying error; the originating type never crosses
// this boundary. ID is unique per normalization, so two alerts derived from
// the same failure category still compare unequal.
type DisplayableError struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Normalize maps any failure reaching the conversation core into a
// DisplayableError. The mapping is total: every error resolves to exactly one
// alert; unrecognized failures fall back to a generic retry message.
// Decoding failures keep their diagnostic title but never carry payload
// content — the upstream sentinels are constructed without raw bytes.
func Normalize(err error) DisplayableError {
	d := DisplayableError{ID: uuid.NewString()}

	switch {
	case errors.Is(err, gcalendar.ErrPermissionDenied):
		d.Title = "Access Needed"
		d.Message = "Calendar and reminder access has not been granted. Please allow access in settings and try again."

	case errors.Is(err, gcalendar.ErrNoWritableCalendar):
		d.Title = "No Calendar Available"
		d.Message = "There is no writable calendar or reminder list to save to. Please add one and try again."

	case errors.Is(err, intent.ErrUnparseableDate):
		d.Title = "Date Not Understood"
		d.Message = "The date or time in your request could not be understood. Please rephrase it, e.g. \"tomorrow at 10\"."

	case errors.Is(err, intent.ErrUnclassifiable), errors.Is(err, intent.ErrEmptyInput):
		d.Title = "Not Understood"
		d.Message = "Your request could not be understood. Please rephrase and try again."

	case errors.Is(err, memory.ErrEmptyEmbedding):
		d.Title = "Nothing to Save"
		d.Message = "No meaningful content was found to save. Please try different wording."

	case errors.Is(err, memory.ErrEmbedding):
		d.Title = "Processing Failed"
		d.Message = "Your text could not be processed right now. Please try again."

	case errors.Is(err, memory.ErrVectorStore):
		d.Title = "Storage Failed"
		d.Message = "Your data could not be stored right now. Please try again."

	case errors.Is(err, memory.ErrGeneration):
		d.Title = "Answer Failed"
		d.Message = "An answer could not be generated right now. Please try again."

	case errors.Is(err, transcribe.ErrTranscription):
		d.Title = "Transcription Failed"
		d.Message = "Your recording could not be transcribed. Please try again or type your request."

	case errors.Is(err, reachability.ErrOffline):
		d.Title = "No Connection"
		d.Message = "You appear to be offline. Please check your connection."

	case errors.Is(err, retry.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		d.Title = "Timed Out"
		d.Message = "The request took too long. Please try again."

	default:
		d.Title = "Something Went Wrong"
		d.Message = "An unexpected error occurred. Please try again later."
	}

	return d
}
