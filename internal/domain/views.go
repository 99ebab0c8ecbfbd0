package domain

// State is the coarse lifecycle state of a quiz session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Phase refines StateInProgress.
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseRevealed       Phase = "revealed"
	PhaseAnswerShown    Phase = "answer_shown"
)

// QuestionView is what the presentation shell renders for the current round.
type QuestionView struct {
	Number   int       `json:"number"`
	Total    int       `json:"total"`
	Prompt   string    `json:"prompt"`
	Options  []string  `json:"options,omitempty"`
	Mode     InputMode `json:"mode"`
	Phase    Phase     `json:"phase"`
	Feedback string    `json:"feedback,omitempty"`
	// Correct is set once the round has been scored.
	Correct *bool `json:"correct,omitempty"`
}

// ScoreView is the running score.
type ScoreView struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Current  int `json:"current"`
	Total    int `json:"total"`
}

// ResultsView summarizes a completed session.
type ResultsView struct {
	QuizType   string  `json:"quizType"`
	Player     string  `json:"player"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Saved      bool    `json:"saved"`
	RecordID   int64   `json:"recordId,omitempty"`
	Warning    string  `json:"warning,omitempty"`
}
