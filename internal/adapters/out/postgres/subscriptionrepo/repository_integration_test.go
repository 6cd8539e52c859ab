package subscriptionrepo_test

import (
	"context"
	"testing"
	"time"

	"pizzatracker/internal/adapters/out/postgres/subscriptionrepo"
	"pizzatracker/internal/core/domain/model/subscription"
	"pizzatracker/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(key string, aggregate any) {
	m.Called(key, aggregate)
}

type SubscriptionRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *subscriptionrepo.GormSubscriptionRepository
	tracker    *MockAggregateTracker
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&subscriptionrepo.SubscriptionDTO{}))
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE push_subscriptions").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = subscriptionrepo.NewGormSubscriptionRepository(suite.db, suite.tracker)
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TestUpsert_InsertsAndLoads() {
	ctx := context.Background()
	sub := suite.newSubscription("alice", "https://push.example.com/send/1")
	suite.tracker.On("TrackAggregate", "subscription:alice", sub).Once()

	suite.Require().NoError(suite.repository.Upsert(ctx, sub))

	loaded, err := suite.repository.GetByUser(ctx, "alice")
	suite.Require().NoError(err)
	suite.True(sub.ID().IsEqual(loaded.ID()))
	suite.Equal(sub.Endpoint(), loaded.Endpoint())
	suite.Equal(sub.P256dh(), loaded.P256dh())
	suite.Equal(sub.Auth(), loaded.Auth())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TestUpsert_ReplacesEarlierSubscription() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", "subscription:alice", mock.Anything).Twice()

	first := suite.newSubscription("alice", "https://push.example.com/send/1")
	second := suite.newSubscription("alice", "https://push.example.com/send/2")
	suite.Require().NoError(suite.repository.Upsert(ctx, first))
	suite.Require().NoError(suite.repository.Upsert(ctx, second))

	loaded, err := suite.repository.GetByUser(ctx, "alice")
	suite.Require().NoError(err)
	suite.Equal("https://push.example.com/send/2", loaded.Endpoint())
	suite.True(first.ID().IsEqual(loaded.ID()), "the first row id is kept")

	var count int64
	suite.Require().NoError(suite.db.Model(&subscriptionrepo.SubscriptionDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TestGetByUser_Missing() {
	_, err := suite.repository.GetByUser(context.Background(), "nobody")

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TestGetByUser_BlankUser() {
	_, err := suite.repository.GetByUser(context.Background(), "  ")

	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) TestUpsert_RejectsUnconstructed() {
	err := suite.repository.Upsert(context.Background(), &subscription.Subscription{})

	suite.Require().ErrorIs(err, subscription.ErrSubscriptionIsNotConstructed)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *SubscriptionRepositoryIntegrationTestSuite) newSubscription(userID, endpoint string) *subscription.Subscription {
	sub, err := subscription.NewSubscription(userID, endpoint, "BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA_0QTpQtUbVlUls0VJXg7A8u-Ts1XbjhazAkj7I99e8QcYP7DkM", "tBHItJI5svbpez7KI4CCXg")
	suite.Require().NoError(err)
	return sub
}

func TestSubscriptionRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionRepositoryIntegrationTestSuite))
}
