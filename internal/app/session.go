package app

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mathdrills/internal/domain"
	"mathdrills/internal/variant"
)

const (
	feedbackCorrect   = "Correct! Well done!"
	feedbackIncorrect = "Wrong! The correct answer was %s"
	feedbackRevealed  = "The answer is %s"
)

// ScoreRecorder persists the result of a completed session.
type ScoreRecorder interface {
	SaveScore(ctx context.Context, quizType string, score, total int, player string) (int64, error)
}

// SessionOptions configures a new Session. Zero values fall back to the
// strategy's defaults.
type SessionOptions struct {
	Total     int
	InputMode domain.InputMode
	Player    string
	Recorder  ScoreRecorder
	// OnExit runs when the learner returns to the menu.
	OnExit func(*Session)
	Rand   *rand.Rand
	Logger logrus.FieldLogger
}

// Session is one run through a quiz. It is driven from a single goroutine
// (the presentation shell) and is not safe for concurrent use.
//
// Counters satisfy 0 <= correct <= current <= total after every operation,
// and current == total once the session is completed.
type Session struct {
	id        string
	strategy  variant.Strategy
	mode      domain.InputMode
	baseTotal int
	total     int
	current   int
	correct   int
	state     domain.State
	phase     domain.Phase
	player    string

	question    domain.Question
	options     []domain.AnswerOption
	feedback    string
	lastCorrect *bool
	results     *domain.ResultsView

	recorder ScoreRecorder
	onExit   func(*Session)
	rnd      *rand.Rand
	log      logrus.FieldLogger
}

// NewSession creates a session in the NotStarted state.
func NewSession(strategy variant.Strategy, opts SessionOptions) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		strategy: strategy,
		state:    domain.StateNotStarted,
		player:   opts.Player,
		recorder: opts.Recorder,
		onExit:   opts.OnExit,
		rnd:      opts.Rand,
		log:      opts.Logger,
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithFields(logrus.Fields{"session": s.id, "quiz": strategy.Name()})
	if s.player == "" {
		s.player = domain.AnonymousName
	}

	s.mode = opts.InputMode
	if s.mode == "" {
		s.mode = domain.InputButtons
		if pref, ok := strategy.(variant.ModePreference); ok {
			s.mode = pref.PreferredMode()
		}
	}

	total := opts.Total
	if total <= 0 {
		total = strategy.DefaultTotal()
	}
	total = s.capTotal(total)
	if total <= 0 {
		return nil, domain.ErrInvalidTotal
	}
	s.baseTotal, s.total = total, total
	return s, nil
}

func (s *Session) ID() string             { return s.id }
func (s *Session) QuizType() string       { return s.strategy.Name() }
func (s *Session) State() domain.State    { return s.state }
func (s *Session) Phase() domain.Phase    { return s.phase }
func (s *Session) Player() string         { return s.player }
func (s *Session) Mode() domain.InputMode { return s.mode }

// Start generates the first question.
func (s *Session) Start() error {
	if s.state != domain.StateNotStarted {
		return domain.ErrInvalidTransition
	}
	if deck, ok := s.strategy.(variant.Deck); ok {
		deck.Reset(s.rnd)
	}
	if err := s.nextQuestion(); err != nil {
		return err
	}
	s.state = domain.StateInProgress
	s.log.WithField("total", s.total).Debug("quiz started")
	return nil
}

// SubmitAnswer scores a typed or selected value against the current question.
// Input that cannot be compared is rejected without changing state.
func (s *Session) SubmitAnswer(raw string) (bool, error) {
	if err := s.requirePhase(domain.PhaseAwaitingAnswer); err != nil {
		return false, err
	}
	if s.EffectiveMode() == domain.InputSelfAssess {
		return false, domain.ErrWrongInputMode
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, domain.ErrInvalidAnswer
	}
	if s.question.Expected.Numeric {
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return false, domain.ErrInvalidAnswer
		}
	}
	correct := s.question.IsCorrect(raw)
	s.score(correct)
	return correct, nil
}

// SelectOption submits the i-th option in buttons mode.
func (s *Session) SelectOption(i int) (bool, error) {
	if err := s.requirePhase(domain.PhaseAwaitingAnswer); err != nil {
		return false, err
	}
	if s.EffectiveMode() != domain.InputButtons {
		return false, domain.ErrWrongInputMode
	}
	if i < 0 || i >= len(s.options) {
		return false, domain.ErrOptionNotFound
	}
	correct := s.options[i].IsCorrect
	s.score(correct)
	return correct, nil
}

// Reveal shows the expected answer in self-assessment mode without scoring.
func (s *Session) Reveal() error {
	if err := s.requirePhase(domain.PhaseAwaitingAnswer); err != nil {
		return err
	}
	if s.EffectiveMode() != domain.InputSelfAssess {
		return domain.ErrWrongInputMode
	}
	s.phase = domain.PhaseRevealed
	s.feedback = fmt.Sprintf(feedbackRevealed, s.question.Expected)
	return nil
}

// SelfReport applies the learner's own verdict after Reveal. The verdict is
// trusted as given.
func (s *Session) SelfReport(wasCorrect bool) error {
	if err := s.requirePhase(domain.PhaseRevealed); err != nil {
		return err
	}
	s.score(wasCorrect)
	return nil
}

// Advance moves to the next question, or completes the session after the
// last one. A failed score write is returned wrapped in ErrScoreNotSaved; the
// session is completed regardless.
func (s *Session) Advance(ctx context.Context) error {
	if err := s.requirePhase(domain.PhaseAnswerShown); err != nil {
		return err
	}
	if s.current < s.total {
		return s.nextQuestion()
	}
	return s.complete(ctx)
}

// Restart resets the counters and starts over from the first question.
func (s *Session) Restart() error {
	s.state = domain.StateNotStarted
	s.phase = domain.PhaseNone
	s.total = s.capTotal(s.baseTotal)
	s.current, s.correct = 0, 0
	s.question, s.options = domain.Question{}, nil
	s.feedback, s.lastCorrect, s.results = "", nil, nil
	return s.Start()
}

// SetTotalQuestions changes the quiz length. Dropping below the current
// question truncates the quiz and completes it immediately. On a completed
// session the new total applies from the next restart.
func (s *Session) SetTotalQuestions(ctx context.Context, n int) error {
	if n <= 0 {
		return domain.ErrInvalidTotal
	}
	n = s.capTotal(n)
	s.baseTotal = n

	switch s.state {
	case domain.StateNotStarted:
		s.total = n
	case domain.StateInProgress:
		if n >= s.current {
			s.total = n
			return nil
		}
		s.total, s.current = n, n
		if s.correct > n {
			s.correct = n
		}
		s.log.WithField("total", n).Debug("quiz truncated")
		return s.complete(ctx)
	}
	return nil
}

// SetInputMode switches how answers are given. It is refused while a revealed
// answer awaits the learner's verdict.
func (s *Session) SetInputMode(mode domain.InputMode) error {
	parsed, err := domain.ParseInputMode(string(mode))
	if err != nil {
		return err
	}
	if s.phase == domain.PhaseRevealed {
		return domain.ErrInvalidTransition
	}
	s.mode = parsed
	return nil
}

// SetPlayer changes the name the score is recorded under.
func (s *Session) SetPlayer(name string) {
	if name == "" {
		name = domain.AnonymousName
	}
	s.player = name
}

// ReturnToMenu abandons the session and notifies the owner.
func (s *Session) ReturnToMenu() {
	s.log.WithField("question", s.current).Debug("returned to menu")
	if s.onExit != nil {
		s.onExit(s)
	}
}

// EffectiveMode is the configured mode, except that questions without
// options fall back to typed input in buttons mode.
func (s *Session) EffectiveMode() domain.InputMode {
	if s.mode == domain.InputButtons && len(s.options) == 0 {
		return domain.InputTyped
	}
	return s.mode
}

// QuestionView renders the current round.
func (s *Session) QuestionView() domain.QuestionView {
	view := domain.QuestionView{
		Number:   s.current,
		Total:    s.total,
		Mode:     s.EffectiveMode(),
		Phase:    s.phase,
		Feedback: s.feedback,
		Correct:  s.lastCorrect,
	}
	if s.state != domain.StateInProgress {
		return view
	}
	view.Prompt = s.question.Prompt
	if s.phase != domain.PhaseAwaitingAnswer {
		view.Prompt = s.question.PromptWithAnswer
	}
	if view.Mode == domain.InputButtons {
		view.Options = make([]string, len(s.options))
		for i, opt := range s.options {
			view.Options[i] = opt.Value.String()
		}
	}
	return view
}

// ScoreView is the running score.
func (s *Session) ScoreView() domain.ScoreView {
	return domain.ScoreView{
		Correct:  s.correct,
		Answered: s.answered(),
		Current:  s.current,
		Total:    s.total,
	}
}

// ResultsView reports the outcome once the session is completed.
func (s *Session) ResultsView() (domain.ResultsView, bool) {
	if s.results == nil {
		return domain.ResultsView{}, false
	}
	return *s.results, true
}

func (s *Session) answered() int {
	switch {
	case s.state == domain.StateCompleted:
		return s.current
	case s.phase == domain.PhaseAnswerShown:
		return s.current
	case s.current > 0:
		return s.current - 1
	}
	return 0
}

func (s *Session) requirePhase(phase domain.Phase) error {
	if s.state != domain.StateInProgress || s.phase != phase {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Session) nextQuestion() error {
	q, err := s.strategy.GenerateQuestion(s.rnd)
	if err != nil {
		return fmt.Errorf("generate question: %w", err)
	}
	s.current++
	s.question = q
	s.options = s.buildOptions(q)
	s.phase = domain.PhaseAwaitingAnswer
	s.feedback = ""
	s.lastCorrect = nil
	return nil
}

func (s *Session) buildOptions(q domain.Question) []domain.AnswerOption {
	switch {
	case len(q.Options) > 0:
		values := variant.TextOptions(s.rnd, q.Expected.Text, q.Options)
		options := make([]domain.AnswerOption, len(values))
		for i, v := range values {
			options[i] = domain.AnswerOption{Value: domain.TextAnswer(v), IsCorrect: q.IsCorrect(v)}
		}
		return options
	case q.Expected.Numeric:
		values := variant.Options(s.rnd, q.Expected.Number)
		options := make([]domain.AnswerOption, len(values))
		for i, v := range values {
			options[i] = domain.AnswerOption{Value: domain.NumberAnswer(v), IsCorrect: v == q.Expected.Number}
		}
		return options
	}
	return nil
}

func (s *Session) score(correct bool) {
	if correct {
		s.correct++
		s.feedback = feedbackCorrect
	} else {
		s.feedback = fmt.Sprintf(feedbackIncorrect, s.question.Expected)
	}
	s.lastCorrect = &correct
	s.phase = domain.PhaseAnswerShown
}

func (s *Session) complete(ctx context.Context) error {
	s.state = domain.StateCompleted
	s.phase = domain.PhaseNone
	s.feedback, s.lastCorrect = "", nil
	s.results = &domain.ResultsView{
		QuizType:   s.strategy.Name(),
		Player:     s.player,
		Score:      s.correct,
		Total:      s.total,
		Percentage: domain.Percentage(s.correct, s.total),
	}
	log := s.log.WithFields(logrus.Fields{"score": s.correct, "total": s.total, "player": s.player})

	if s.recorder == nil {
		log.Info("quiz completed")
		return nil
	}
	id, err := s.recorder.SaveScore(ctx, s.strategy.Name(), s.correct, s.total, s.player)
	if err != nil {
		s.results.Warning = err.Error()
		log.WithError(err).Warn("quiz completed, score not saved")
		return fmt.Errorf("%w: %v", domain.ErrScoreNotSaved, err)
	}
	s.results.Saved, s.results.RecordID = true, id
	log.WithField("record", id).Info("quiz completed")
	return nil
}

func (s *Session) capTotal(n int) int {
	if deck, ok := s.strategy.(variant.Deck); ok && n > deck.Len() {
		return deck.Len()
	}
	return n
}
