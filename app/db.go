package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/marvinrgb/argue-well-api/app/config"
	"github.com/marvinrgb/argue-well-api/app/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MustInitDB connects to Postgres and installs it as the active store.
// It logs fatally on error.
func MustInitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
		cfg.DB.Name,
		cfg.DB.SSLMode,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	store = &postgresStore{db: d}
}

type postgresStore struct {
	db *sql.DB
}

const userColumns = `
	id, email, password_hash, subscription_tier, monthly_analysis_count,
	last_analysis_date, stripe_customer_id, created_at, updated_at
`

func (s *postgresStore) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	user := models.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     passwordHash,
		SubscriptionTier: models.TierFree,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, subscription_tier, monthly_analysis_count)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING created_at, updated_at;
	`, user.ID, user.Email, user.PasswordHash, user.SubscriptionTier).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *postgresStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1;
	`, id)
	return scanUser(row)
}

func (s *postgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1;
	`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		user     models.User
		last     sql.NullTime
		stripeID sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.SubscriptionTier,
		&user.MonthlyAnalysisCount,
		&last,
		&stripeID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if last.Valid {
		t := last.Time
		user.LastAnalysisDate = &t
	}
	user.StripeCustomerID = stripeID.String
	return user, nil
}

func (s *postgresStore) UpdateUserUsage(ctx context.Context, userID string, count int, last time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET monthly_analysis_count = $1, last_analysis_date = $2, updated_at = now()
		WHERE id = $3;
	`, count, last, userID)
	return err
}

func (s *postgresStore) UpdateUserTier(ctx context.Context, userID string, tier models.Tier) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET subscription_tier = $1, updated_at = now()
		WHERE id = $2;
	`, tier, userID)
	return err
}

func (s *postgresStore) UpdateUserTierByStripeCustomer(ctx context.Context, stripeCustomerID string, tier models.Tier) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET subscription_tier = $1, updated_at = now()
		WHERE stripe_customer_id = $2;
	`, tier, stripeCustomerID)
	return err
}

func (s *postgresStore) SetStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET stripe_customer_id = $1, updated_at = now()
		WHERE id = $2;
	`, stripeCustomerID, userID)
	return err
}

func (s *postgresStore) CreateArgument(ctx context.Context, userID, topic string) (models.Argument, error) {
	arg := models.Argument{
		ID:              uuid.NewString(),
		UserID:          userID,
		Topic:           topic,
		AnalysisHistory: []models.Analysis{},
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO arguments (id, user_id, topic, claim, reason, evidence, impact)
		VALUES ($1, $2, $3, '', '', '', '')
		RETURNING created_at, updated_at;
	`, arg.ID, arg.UserID, arg.Topic).Scan(&arg.CreatedAt, &arg.UpdatedAt)
	if err != nil {
		return models.Argument{}, err
	}
	return arg, nil
}

func (s *postgresStore) ListArguments(ctx context.Context, userID string) ([]models.ArgumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, updated_at
		FROM arguments
		WHERE user_id = $1
		ORDER BY updated_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ArgumentSummary{}
	for rows.Next() {
		var item models.ArgumentSummary
		if err := rows.Scan(&item.ArgumentID, &item.Topic, &item.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetArgument loads an argument and its analysis history. Existence is
// checked before ownership so a missing id and a foreign owner surface as
// distinct errors.
func (s *postgresStore) GetArgument(ctx context.Context, userID, argumentID string) (models.Argument, error) {
	arg, err := s.getArgumentRow(ctx, argumentID)
	if err != nil {
		return models.Argument{}, err
	}
	if arg.UserID != userID {
		return models.Argument{}, ErrNotOwner
	}

	history, err := s.loadAnalyses(ctx, argumentID)
	if err != nil {
		return models.Argument{}, err
	}
	arg.AnalysisHistory = history
	return arg, nil
}

func (s *postgresStore) getArgumentRow(ctx context.Context, argumentID string) (models.Argument, error) {
	var arg models.Argument
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, topic, claim, reason, evidence, impact, created_at, updated_at
		FROM arguments
		WHERE id = $1;
	`, argumentID).Scan(
		&arg.ID,
		&arg.UserID,
		&arg.Topic,
		&arg.Claim,
		&arg.Reason,
		&arg.Evidence,
		&arg.Impact,
		&arg.CreatedAt,
		&arg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return models.Argument{}, ErrArgumentNotFound
		}
		return models.Argument{}, err
	}
	return arg, nil
}

func (s *postgresStore) loadAnalyses(ctx context.Context, argumentID string) ([]models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fallacies, clarity_score, evidence_feedback, conciseness_feedback, created_at
		FROM analyses
		WHERE argument_id = $1
		ORDER BY created_at ASC, id ASC;
	`, argumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Analysis{}
	for rows.Next() {
		var (
			a   models.Analysis
			raw []byte
		)
		if err := rows.Scan(&raw, &a.ClarityScore, &a.EvidenceFeedback, &a.ConcisenessFeedback, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &a.Fallacies); err != nil {
			return nil, err
		}
		if a.Fallacies == nil {
			a.Fallacies = []models.Fallacy{}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *postgresStore) UpdateArgument(ctx context.Context, userID, argumentID string, fields models.ArgumentUpdate) (models.Argument, error) {
	arg, err := s.GetArgument(ctx, userID, argumentID)
	if err != nil {
		return models.Argument{}, err
	}

	if fields.Claim != "" {
		arg.Claim = fields.Claim
	}
	if fields.Reason != "" {
		arg.Reason = fields.Reason
	}
	if fields.Evidence != "" {
		arg.Evidence = fields.Evidence
	}
	if fields.Impact != "" {
		arg.Impact = fields.Impact
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE arguments
		SET claim = $1, reason = $2, evidence = $3, impact = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at;
	`, arg.Claim, arg.Reason, arg.Evidence, arg.Impact, argumentID).Scan(&arg.UpdatedAt)
	if err != nil {
		return models.Argument{}, err
	}
	return arg, nil
}

// AppendAnalysis stores a new analysis and bumps the argument's updated_at
// in one transaction so the library sort reflects the run.
func (s *postgresStore) AppendAnalysis(ctx context.Context, argumentID string, analysis models.Analysis) (models.Analysis, error) {
	fallacies := analysis.Fallacies
	if fallacies == nil {
		fallacies = []models.Fallacy{}
	}
	raw, err := json.Marshal(fallacies)
	if err != nil {
		return models.Analysis{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return models.Analysis{}, err
	}
	defer tx.Rollback()

	saved := analysis
	saved.Fallacies = fallacies
	err = tx.QueryRowContext(ctx, `
		INSERT INTO analyses (id, argument_id, fallacies, clarity_score, evidence_feedback, conciseness_feedback)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;
	`, uuid.NewString(), argumentID, raw, saved.ClarityScore, saved.EvidenceFeedback, saved.ConcisenessFeedback).Scan(&saved.CreatedAt)
	if err != nil {
		return models.Analysis{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE arguments
		SET updated_at = now()
		WHERE id = $1;
	`, argumentID)
	if err != nil {
		return models.Analysis{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Analysis{}, err
	}
	return saved, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Postgres rejects non-uuid path ids with invalid_text_representation;
// treat those the same as a missing row.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
