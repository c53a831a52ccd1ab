package domain

// AnswerView is a render-ready answer.
type AnswerView struct {
	ID     AnswerID    `json:"id"`
	Letter string      `json:"letter"`
	Text   string      `json:"text"`
	State  AnswerState `json:"state"`
}

// AmountView is a render-ready ladder row.
type AmountView struct {
	StepID string      `json:"stepId"`
	Amount float64     `json:"amount"`
	Label  string      `json:"label"`
	State  AmountState `json:"state"`
}

// View is everything a client needs to draw the play screen.
type View struct {
	Route        Route        `json:"route"`
	Status       Status       `json:"status"`
	StepIndex    int          `json:"stepIndex"`
	StepID       string       `json:"stepId"`
	Question     string       `json:"question"`
	Answers      []AnswerView `json:"answers"`
	MultiSelect  bool         `json:"multiSelect"`
	Locked       bool         `json:"locked"`
	CanSubmit    bool         `json:"canSubmit"`
	Reveal       RevealState  `json:"reveal,omitempty"`
	Selected     []AnswerID   `json:"selected"`
	EarnedAmount float64      `json:"earnedAmount"`
	Currency     string       `json:"currency"`
	Ladder       []AmountView `json:"ladder"`
	AmountsOpen  bool         `json:"amountsOpen"`
}

// Event types pushed to session subscribers.
const (
	EventState    = "state"
	EventNavigate = "navigate"
)

// Event is a session update: either a fresh View or a Navigation.
type Event struct {
	Type       string      `json:"type"`
	View       *View       `json:"view,omitempty"`
	Navigation *Navigation `json:"navigation,omitempty"`
}

// ActionType names a player input.
type ActionType string

const (
	ActionStart        ActionType = "start"
	ActionToggle       ActionType = "toggle"
	ActionAnswer       ActionType = "answer"
	ActionSubmit       ActionType = "submit"
	ActionOpenAmounts  ActionType = "openAmounts"
	ActionCloseAmounts ActionType = "closeAmounts"
	ActionTryAgain     ActionType = "tryAgain"
)

// Action is a player input addressed to a session.
type Action struct {
	Type     ActionType `json:"type"`
	AnswerID AnswerID   `json:"answerId,omitempty"`
}
