package newsletter

import (
	"context"
	"errors"
	"testing"

	"github.com/shopflux/storefront/internal/domain/newsletter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Subscribe(ctx context.Context, sub *newsletter.Subscription) (bool, error) {
	args := m.Called(ctx, sub)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*newsletter.Subscription), args.Error(1)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	tests := []struct {
		name    string
		created bool
	}{
		{"new address", true},
		{"repeated address", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSubscriptionRepository)
			svc := NewSubscriptionService(repo, zaptest.NewLogger(t))

			repo.On("Subscribe", mock.Anything, mock.MatchedBy(func(sub *newsletter.Subscription) bool {
				return sub.Email == "reader@example.com" && sub.IsActive
			})).Return(tt.created, nil)

			resp, err := svc.Subscribe(context.Background(), SubscribeRequest{Email: "  Reader@Example.com "})

			require.NoError(t, err)
			assert.Equal(t, "reader@example.com", resp.Email)
			assert.Equal(t, !tt.created, resp.AlreadySubscribed)
			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Subscribe_Errors(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewSubscriptionService(repo, nil)

		_, err := svc.Subscribe(context.Background(), SubscribeRequest{Email: "not-an-email"})

		assert.ErrorIs(t, err, newsletter.ErrInvalidEmail)
		repo.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewSubscriptionService(repo, nil)
		repo.On("Subscribe", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

		_, err := svc.Subscribe(context.Background(), SubscribeRequest{Email: "a@b.co"})
		assert.ErrorContains(t, err, "failed to save subscription")
	})
}
