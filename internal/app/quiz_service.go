package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mathdrills/internal/domain"
	"mathdrills/internal/quizfile"
	"mathdrills/internal/variant"
)

// SessionRepository abstracts where live sessions are kept.
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	List() []*Session
}

// QuizRepository loads quiz documents (from cache/backing files).
type QuizRepository interface {
	GetQuiz(ctx context.Context, path string) (domain.QuizDocument, error)
}

// UserDirectory resolves learner profiles.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (domain.User, error)
}

// Dependencies wires the service to its collaborators. Scores and Users may be
// nil, in which case results are not persisted and only Anonymous can play.
type Dependencies struct {
	Variants *variant.Registry
	Sessions SessionRepository
	Quizzes  QuizRepository
	Scores   ScoreRecorder
	Users    UserDirectory
	Logger   logrus.FieldLogger
}

// Defaults apply when StartQuiz is called without explicit options.
type Defaults struct {
	Questions int
	InputMode domain.InputMode
}

// StartOptions override the defaults for a single session.
type StartOptions struct {
	Total int
	Mode  domain.InputMode
}

// QuizService contains the quiz use cases driven by the shell.
type QuizService struct {
	variants *variant.Registry
	sessions SessionRepository
	quizzes  QuizRepository
	scores   ScoreRecorder
	users    UserDirectory
	defaults Defaults
	log      logrus.FieldLogger
	seed     func() int64

	mu   sync.RWMutex
	user domain.User
}

func NewQuizService(deps Dependencies, defaults Defaults) *QuizService {
	if deps.Variants == nil {
		deps.Variants = variant.Builtin()
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	return &QuizService{
		variants: deps.Variants,
		sessions: deps.Sessions,
		quizzes:  deps.Quizzes,
		scores:   deps.Scores,
		users:    deps.Users,
		defaults: defaults,
		log:      deps.Logger,
		seed:     func() int64 { return time.Now().UnixNano() },
		user:     domain.Anonymous(),
	}
}

// Variants lists the quiz types that can be started.
func (s *QuizService) Variants() []string {
	return s.variants.Names()
}

// StartQuiz builds a session for the named quiz type and starts it.
//
// The input mode is resolved in order: explicit option, the quiz's own
// preference (file metadata), then the configured default.
func (s *QuizService) StartQuiz(ctx context.Context, name string, opts StartOptions) (*Session, error) {
	strategy, err := s.variants.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		if _, ok := strategy.(variant.ModePreference); !ok {
			mode = s.defaults.InputMode
		}
	}
	total := opts.Total
	if total <= 0 {
		if _, isDeck := strategy.(variant.Deck); !isDeck {
			total = s.defaults.Questions
		}
	}

	session, err := NewSession(strategy, SessionOptions{
		Total:     total,
		InputMode: mode,
		Player:    s.CurrentUser().DisplayName,
		Recorder:  s.scores,
		OnExit:    func(sess *Session) { s.sessions.Delete(sess.ID()) },
		Rand:      rand.New(rand.NewSource(s.seed())),
		Logger:    s.log,
	})
	if err != nil {
		return nil, err
	}
	if err := session.Start(); err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

// Session returns a live session by id.
func (s *QuizService) Session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ReturnToMenu abandons a session; the session's exit callback drops it.
func (s *QuizService) ReturnToMenu(id string) error {
	session, ok := s.sessions.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ReturnToMenu()
	return nil
}

// SelectUser makes id the active learner. Sessions still in progress record
// their score under the new name.
func (s *QuizService) SelectUser(ctx context.Context, id int64) (domain.User, error) {
	user := domain.Anonymous()
	if id != domain.AnonymousUserID {
		if s.users == nil {
			return domain.User{}, domain.ErrUserNotFound
		}
		found, err := s.users.Get(ctx, id)
		if err != nil {
			return domain.User{}, err
		}
		user = found
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	for _, session := range s.sessions.List() {
		if session.State() != domain.StateCompleted {
			session.SetPlayer(user.DisplayName)
		}
	}
	s.log.WithField("user", user.Username).Info("user selected")
	return user, nil
}

// CurrentUser returns the active learner, Anonymous by default.
func (s *QuizService) CurrentUser() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// RegisterQuizFile makes a quiz file playable and returns its quiz type name.
// A file that cannot be loaded is still registered and plays a single
// question describing the error.
func (s *QuizService) RegisterQuizFile(ctx context.Context, path string) (string, error) {
	if s.quizzes == nil {
		return "", fmt.Errorf("register %s: no quiz repository configured", path)
	}
	doc, err := s.load(ctx, path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("quiz file failed to load")
	}

	name := variant.FileQuizName(doc)
	s.variants.Register(name, func(ctx context.Context) (variant.Strategy, error) {
		doc, _ := s.load(ctx, path)
		return variant.NewFileQuiz(name, doc), nil
	})
	return name, nil
}

func (s *QuizService) load(ctx context.Context, path string) (domain.QuizDocument, error) {
	doc, err := s.quizzes.GetQuiz(ctx, path)
	if err != nil {
		return quizfile.Sentinel(path, err), err
	}
	return doc, nil
}
