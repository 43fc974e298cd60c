package usecase

import "errors"

type Stage string

const (
	StageAudio         Stage = "Audio Extraction"
	StageTranscription Stage = "Transcription"
	StageModeration    Stage = "Moderation"
	StageSentiment     Stage = "Sentiment Analysis"
)

var ErrAudioTooLarge = errors.New("extracted audio exceeds upload limit")

// StageError names the stage that aborted a run, e.g. "Moderation Error: ...".
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + " Error: " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Temporary reports whether the underlying failure is worth retrying.
func (e *StageError) Temporary() bool {
	var t interface{ Temporary() bool }
	return errors.As(e.Err, &t) && t.Temporary()
}
