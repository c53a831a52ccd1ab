package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session has not been started.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrConfigNotFound indicates the game configuration could not be loaded.
	ErrConfigNotFound = errors.New("game config not found")
	// ErrInvalidConfig wraps validation failures of a game configuration.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrAnswerNotFound indicates an answer id outside the current question.
	ErrAnswerNotFound = errors.New("answer not found in current question")
	// ErrStepOutOfRange means the step index left the ladder.
	ErrStepOutOfRange = errors.New("step index out of range")
	// ErrGameFinished is returned for inputs after the game was won or lost.
	ErrGameFinished = errors.New("game already finished")
	// ErrNotAnsweredCorrectly is returned when advancing without a correct result.
	ErrNotAnsweredCorrectly = errors.New("current step not answered correctly")
	// ErrSelectionMode is returned when an input does not fit the question's
	// single- or multi-select mode.
	ErrSelectionMode = errors.New("input does not match question selection mode")
	// ErrEmptySelection is returned when submitting with nothing selected.
	ErrEmptySelection = errors.New("no answers selected")
	// ErrGameOver is returned for play inputs while the game-over screen is
	// shown; only starting again leaves it.
	ErrGameOver = errors.New("game over, start again to play")
	// ErrUnknownAction is returned for unsupported action types.
	ErrUnknownAction = errors.New("unsupported action")
)
