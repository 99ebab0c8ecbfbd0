package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"mathdrills/internal/domain"
)

const (
	defaultTopScores     = 10
	defaultHistoryLength = 20
)

type scoreModel struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID             int64     `bun:"id,pk,autoincrement"`
	QuizType       string    `bun:"quiz_type,notnull"`
	PlayerName     string    `bun:"player_name,notnull"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     float64   `bun:"percentage,notnull"`
	Timestamp      time.Time `bun:"timestamp,notnull"`
}

func (m scoreModel) record() domain.ScoreRecord {
	return domain.ScoreRecord{
		ID:             m.ID,
		QuizType:       m.QuizType,
		PlayerName:     m.PlayerName,
		Score:          m.Score,
		TotalQuestions: m.TotalQuestions,
		Percentage:     m.Percentage,
		Timestamp:      m.Timestamp.UTC(),
	}
}

// ScoreStore persists completed quiz results.
type ScoreStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewScoreStore returns a store stamping records with clock, or time.Now when nil.
func NewScoreStore(db *bun.DB, clock func() time.Time) *ScoreStore {
	if clock == nil {
		clock = time.Now
	}
	return &ScoreStore{db: db, now: clock}
}

// SaveScore inserts a result and returns its id.
func (s *ScoreStore) SaveScore(ctx context.Context, quizType string, score, total int, player string) (int64, error) {
	if player == "" {
		player = domain.AnonymousName
	}
	row := &scoreModel{
		QuizType:       quizType,
		PlayerName:     player,
		Score:          score,
		TotalQuestions: total,
		Percentage:     domain.Percentage(score, total),
		Timestamp:      s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return 0, fmt.Errorf("save score: %w", err)
	}
	return row.ID, nil
}

// TopScores returns the best results, optionally for one quiz type. Ties go to
// the most recent.
func (s *ScoreStore) TopScores(ctx context.Context, quizType string, limit int) ([]domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = defaultTopScores
	}
	var rows []scoreModel
	q := s.db.NewSelect().Model(&rows).
		Order("percentage DESC", "timestamp DESC", "id DESC").
		Limit(limit)
	if quizType != "" {
		q = q.Where("quiz_type = ?", quizType)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return records(rows), nil
}

// PlayerHistory returns a player's most recent results.
func (s *ScoreStore) PlayerHistory(ctx context.Context, player string, limit int) ([]domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLength
	}
	var rows []scoreModel
	err := s.db.NewSelect().Model(&rows).
		Where("player_name = ?", player).
		Order("timestamp DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("player history: %w", err)
	}
	return records(rows), nil
}

// Statistics aggregates results, optionally for one quiz type. An empty table
// yields all zeros.
func (s *ScoreStore) Statistics(ctx context.Context, quizType string) (domain.ScoreStatistics, error) {
	var row struct {
		TotalQuizzes        int     `bun:"total_quizzes"`
		AvgPercentage       float64 `bun:"avg_percentage"`
		MaxPercentage       float64 `bun:"max_percentage"`
		MinPercentage       float64 `bun:"min_percentage"`
		AvgScore            float64 `bun:"avg_score"`
		TotalCorrectAnswers int     `bun:"total_correct_answers"`
		TotalQuestionsAsked int     `bun:"total_questions_asked"`
	}
	q := s.db.NewSelect().Model((*scoreModel)(nil)).
		ColumnExpr("COUNT(*) AS total_quizzes").
		ColumnExpr("COALESCE(AVG(percentage), 0.0) AS avg_percentage").
		ColumnExpr("COALESCE(MAX(percentage), 0.0) AS max_percentage").
		ColumnExpr("COALESCE(MIN(percentage), 0.0) AS min_percentage").
		ColumnExpr("COALESCE(AVG(score), 0.0) AS avg_score").
		ColumnExpr("COALESCE(SUM(score), 0) AS total_correct_answers").
		ColumnExpr("COALESCE(SUM(total_questions), 0) AS total_questions_asked")
	if quizType != "" {
		q = q.Where("quiz_type = ?", quizType)
	}
	if err := q.Scan(ctx, &row); err != nil {
		return domain.ScoreStatistics{}, fmt.Errorf("score statistics: %w", err)
	}
	return domain.ScoreStatistics{
		TotalQuizzes:        row.TotalQuizzes,
		AvgPercentage:       row.AvgPercentage,
		MaxPercentage:       row.MaxPercentage,
		MinPercentage:       row.MinPercentage,
		AvgScore:            row.AvgScore,
		TotalCorrectAnswers: row.TotalCorrectAnswers,
		TotalQuestionsAsked: row.TotalQuestionsAsked,
	}, nil
}

// QuizTypes lists the quiz types that have at least one result.
func (s *ScoreStore) QuizTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := s.db.NewSelect().Model((*scoreModel)(nil)).
		Distinct().
		Column("quiz_type").
		Order("quiz_type ASC").
		Scan(ctx, &types)
	if err != nil {
		return nil, fmt.Errorf("quiz types: %w", err)
	}
	return types, nil
}

func records(rows []scoreModel) []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out
}
