package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marvinrgb/argue-well-api/app/models"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the handler tests. A per-argument
// touch counter stands in for updated_at recency so list ordering does not
// depend on clock resolution.
type memStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	args      map[string]*models.Argument
	touches   map[string]int
	nextTouch int
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]models.User{},
		args:    map[string]*models.Argument{},
		touches: map[string]int{},
	}
}

func (m *memStore) addUser(user models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[user.ID] = user
	return user
}

func (m *memStore) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return models.User{}, ErrEmailTaken
		}
	}
	user := models.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     passwordHash,
		SubscriptionTier: models.TierFree,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *memStore) UpdateUserUsage(ctx context.Context, userID string, count int, last time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.MonthlyAnalysisCount = count
	user.LastAnalysisDate = &last
	user.UpdatedAt = time.Now()
	m.users[userID] = user
	return nil
}

func (m *memStore) UpdateUserTier(ctx context.Context, userID string, tier models.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.SubscriptionTier = tier
	m.users[userID] = user
	return nil
}

func (m *memStore) UpdateUserTierByStripeCustomer(ctx context.Context, stripeCustomerID string, tier models.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.StripeCustomerID == stripeCustomerID {
			u.SubscriptionTier = tier
			m.users[id] = u
		}
	}
	return nil
}

func (m *memStore) SetStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.StripeCustomerID = stripeCustomerID
	m.users[userID] = user
	return nil
}

func (m *memStore) CreateArgument(ctx context.Context, userID, topic string) (models.Argument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	arg := models.Argument{
		ID:              uuid.NewString(),
		UserID:          userID,
		Topic:           topic,
		AnalysisHistory: []models.Analysis{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.args[arg.ID] = &arg
	m.bump(arg.ID)
	return copyArgument(&arg), nil
}

func (m *memStore) ListArguments(ctx context.Context, userID string) ([]models.ArgumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ArgumentSummary{}
	ids := []string{}
	for id, arg := range m.args {
		if arg.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.touches[ids[i]] > m.touches[ids[j]]
	})
	for _, id := range ids {
		arg := m.args[id]
		out = append(out, models.ArgumentSummary{
			ArgumentID: arg.ID,
			Topic:      arg.Topic,
			UpdatedAt:  arg.UpdatedAt,
		})
	}
	return out, nil
}

func (m *memStore) GetArgument(ctx context.Context, userID, argumentID string) (models.Argument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	arg, ok := m.args[argumentID]
	if !ok {
		return models.Argument{}, ErrArgumentNotFound
	}
	if arg.UserID != userID {
		return models.Argument{}, ErrNotOwner
	}
	return copyArgument(arg), nil
}

func (m *memStore) UpdateArgument(ctx context.Context, userID, argumentID string, fields models.ArgumentUpdate) (models.Argument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	arg, ok := m.args[argumentID]
	if !ok {
		return models.Argument{}, ErrArgumentNotFound
	}
	if arg.UserID != userID {
		return models.Argument{}, ErrNotOwner
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
	arg.UpdatedAt = time.Now()
	m.bump(argumentID)
	return copyArgument(arg), nil
}

func (m *memStore) AppendAnalysis(ctx context.Context, argumentID string, analysis models.Analysis) (models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	arg, ok := m.args[argumentID]
	if !ok {
		return models.Analysis{}, ErrArgumentNotFound
	}
	analysis.CreatedAt = time.Now()
	if analysis.Fallacies == nil {
		analysis.Fallacies = []models.Fallacy{}
	}
	arg.AnalysisHistory = append(arg.AnalysisHistory, analysis)
	arg.UpdatedAt = time.Now()
	m.bump(argumentID)
	return analysis, nil
}

func (m *memStore) bump(argumentID string) {
	m.nextTouch++
	m.touches[argumentID] = m.nextTouch
}

func copyArgument(arg *models.Argument) models.Argument {
	out := *arg
	out.AnalysisHistory = append([]models.Analysis{}, arg.AnalysisHistory...)
	return out
}
