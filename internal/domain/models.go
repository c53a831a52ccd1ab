package domain

// AnswerID identifies an answer within its question.
type AnswerID = string

// Answer is one selectable option of a question.
type Answer struct {
	ID   AnswerID `json:"id" yaml:"id" validate:"required"`
	Text string   `json:"text" yaml:"text" validate:"required"`
}

// Question pairs a prompt with its answers and the exact set of correct ids.
type Question struct {
	ID               string     `json:"id" yaml:"id" validate:"required"`
	Text             string     `json:"text" yaml:"text" validate:"required"`
	Answers          []Answer   `json:"answers" yaml:"answers" validate:"required,min=1,dive"`
	CorrectAnswerIDs []AnswerID `json:"correctAnswerIds" yaml:"correctAnswerIds" validate:"required,min=1,dive,required"`
}

// IsMultiSelect reports whether more than one answer must be picked.
func (q Question) IsMultiSelect() bool {
	return len(q.CorrectAnswerIDs) > 1
}

// HasAnswer reports whether id belongs to the question's answers.
func (q Question) HasAnswer(id AnswerID) bool {
	for _, a := range q.Answers {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Step is one rung of the money ladder.
type Step struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Amount   float64  `json:"amount" yaml:"amount" validate:"gte=0"`
	Question Question `json:"question" yaml:"question"`
}

// GameConfig describes a whole game. Steps are in ladder order.
type GameConfig struct {
	Version  int    `json:"version" yaml:"version" validate:"gte=0"`
	Currency string `json:"currency" yaml:"currency" validate:"required,len=3"`
	Steps    []Step `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
}

// Status is the lifecycle state of a game.
type Status string

const (
	StatusInProgress Status = "inProgress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no further answers are accepted.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// Result is the outcome of an answer submission.
type Result string

const (
	ResultCorrect Result = "correct"
	ResultWrong   Result = "wrong"
)

// RevealState drives answer highlighting after a submission. The zero value
// means nothing is revealed.
type RevealState string

const (
	RevealNone    RevealState = ""
	RevealCorrect RevealState = "correct"
	RevealWrong   RevealState = "wrong"
)

// AnswerState is the visual state of one answer.
type AnswerState string

const (
	AnswerInactive AnswerState = "inactive"
	AnswerSelected AnswerState = "selected"
	AnswerCorrect  AnswerState = "correct"
	AnswerWrong    AnswerState = "wrong"
)

// AmountState is the visual state of one ladder row.
type AmountState string

const (
	AmountActive   AmountState = "active"
	AmountDisabled AmountState = "disabled"
	AmountInactive AmountState = "inactive"
)

// Route is a navigation destination.
type Route string

const (
	RoutePlay     Route = "/game"
	RouteGameOver Route = "/game-over"
)

// Navigation is emitted when the session moves to another screen. The earned
// amount is captured when the transition is decided.
type Navigation struct {
	Route           Route   `json:"route"`
	EarnedAmount    float64 `json:"earnedAmount"`
	Currency        string  `json:"currency"`
	FormattedAmount string  `json:"formattedAmount"`
}
