package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"mathdrills/internal/domain"
)

// QuizLoader reads a quiz document from its source (e.g., a file on disk).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, path string) (domain.QuizDocument, error)
}

// QuizRepository caches quiz documents with TTL to avoid re-reading files on every restart.
// Failed loads are not cached.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	doc       domain.QuizDocument
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, path string) (domain.QuizDocument, error) {
	if doc, ok := r.cached(path); ok {
		return doc, nil
	}

	result, err, _ := r.sf.Do(path, func() (interface{}, error) {
		if doc, ok := r.cached(path); ok {
			return doc, nil
		}

		doc, err := r.loader.LoadQuiz(ctx, path)
		if err != nil {
			return domain.QuizDocument{}, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[path] = cachedQuiz{doc: doc, expiresAt: expiresAt}
		r.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return domain.QuizDocument{}, err
	}
	return result.(domain.QuizDocument), nil
}

// Invalidate drops a cached document so the next GetQuiz reloads it.
func (r *QuizRepository) Invalidate(path string) {
	r.mu.Lock()
	delete(r.cache, path)
	r.mu.Unlock()
}

func (r *QuizRepository) cached(path string) (domain.QuizDocument, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[path]; ok && entry.expiresAt.After(now) {
		return entry.doc, true
	}
	return domain.QuizDocument{}, false
}

// StaticQuizLoader serves documents from a map (useful for tests/demos).
type StaticQuizLoader struct {
	docs map[string]domain.QuizDocument
}

func NewStaticQuizLoader(docs map[string]domain.QuizDocument) *StaticQuizLoader {
	return &StaticQuizLoader{docs: docs}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, path string) (domain.QuizDocument, error) {
	if doc, ok := l.docs[path]; ok {
		doc.Path = path
		return doc, nil
	}
	return domain.QuizDocument{}, domain.ErrQuizFileFormat
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
