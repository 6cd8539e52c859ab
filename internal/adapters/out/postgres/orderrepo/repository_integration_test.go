package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"pizzatracker/internal/adapters/out/postgres/orderrepo"
	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(key string, aggregate any) {
	m.Called(key, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

var baseTime = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.LineItemDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_items RESTART IDENTITY").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_AssignsIDAndRoundTrips() {
	ctx := context.Background()
	testOrder := suite.newOrder("alice", baseTime)

	suite.tracker.On("TrackAggregate", "order:1", mock.AnythingOfType("*order.Order")).Once()

	saved, err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)
	suite.Equal(int64(1), saved.ID())
	suite.Zero(testOrder.ID(), "the input order is not mutated")

	loaded, err := suite.repository.Get(ctx, saved.ID())
	suite.Require().NoError(err)
	suite.Equal("alice", loaded.UserID())
	suite.True(baseTime.Equal(loaded.CreatedAt()))
	suite.Equal(time.UTC, loaded.CreatedAt().Location())
	suite.Equal(testOrder.Address(), loaded.Address())

	wantLoc, err := testOrder.DeliveryLocation()
	suite.Require().NoError(err)
	gotLoc, err := loaded.DeliveryLocation()
	suite.Require().NoError(err)
	suite.Equal(wantLoc, gotLoc)

	suite.Require().Len(loaded.Items(), 2)
	suite.Equal("Margherita", loaded.Items()[0].Name())
	suite.Equal("Pepperoni", loaded.Items()[1].Name())
	suite.Equal(14, loaded.Items()[1].Size())
	suite.Require().Len(loaded.Items()[1].Toppings(), 2)
	suite.Equal("Chilli", loaded.Items()[1].Toppings()[1].Name)
	suite.True(decimal.RequireFromString("0.75").Equal(loaded.Items()[1].Toppings()[1].Price))
	suite.True(testOrder.TotalPrice().Equal(loaded.TotalPrice()))

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_RejectsStoredOrder() {
	ctx := context.Background()
	stored, err := suite.newOrder("alice", baseTime).WithID(5)
	suite.Require().NoError(err)

	_, err = suite.repository.Add(ctx, stored)

	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
	suite.assertOrderCount(0)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_RejectsUnconstructedOrder() {
	_, err := suite.repository.Add(context.Background(), &order.Order{})

	suite.Require().ErrorIs(err, order.ErrOrderIsNotConstructed)
	suite.assertOrderCount(0)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	retrievedOrder, err := suite.repository.Get(context.Background(), 404)

	suite.Nil(retrievedOrder)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
	suite.Equal(int64(404), notFoundErr.ID)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_InvalidID() {
	_, err := suite.repository.Get(context.Background(), 0)

	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_LegacyRowWithoutLocation() {
	ctx := context.Background()
	suite.Require().NoError(suite.db.Create(&orderrepo.OrderDTO{
		UserID:    "alice",
		CreatedAt: baseTime,
		Address:   orderrepo.AddressDTO{Name: "Alice", Line1: "1 Baker Street", City: "London", PostalCode: "NW1"},
		Items: []orderrepo.LineItemDTO{
			{Name: "Margherita", Size: order.DefaultSize, BasePrice: decimal.RequireFromString("9.99")},
		},
	}).Error)

	loaded, err := suite.repository.Get(ctx, 1)
	suite.Require().NoError(err)

	suite.False(loaded.HasDeliveryLocation())
	_, err = loaded.DeliveryLocation()
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListByUser_NewestFirstAndScopedToUser() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("string"), mock.Anything).Times(4)

	first := suite.add(suite.newOrder("alice", baseTime))
	second := suite.add(suite.newOrder("alice", baseTime.Add(time.Minute)))
	suite.add(suite.newOrder("bob", baseTime.Add(2*time.Minute)))
	third := suite.add(suite.newOrder("alice", baseTime.Add(time.Minute)))

	orders, err := suite.repository.ListByUser(ctx, "alice")
	suite.Require().NoError(err)

	suite.Equal([]int64{third.ID(), second.ID(), first.ID()}, ids(orders))
	for _, o := range orders {
		suite.Len(o.Items(), 2)
	}

	none, err := suite.repository.ListByUser(ctx, "carol")
	suite.Require().NoError(err)
	suite.Empty(none)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListPlacedSince_OldestFirstFromCutoff() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("string"), mock.Anything).Times(3)

	suite.add(suite.newOrder("alice", baseTime.Add(-2*time.Minute)))
	atCutoff := suite.add(suite.newOrder("bob", baseTime))
	later := suite.add(suite.newOrder("alice", baseTime.Add(30*time.Second)))

	orders, err := suite.repository.ListPlacedSince(ctx, baseTime)
	suite.Require().NoError(err)

	suite.Equal([]int64{atCutoff.ID(), later.ID()}, ids(orders))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_InsideRolledBackTransaction() {
	ctx := context.Background()
	tx := suite.db.Begin()
	suite.Require().NoError(tx.Error)

	repo := orderrepo.NewGormOrderRepository(tx, nil)
	_, err := repo.Add(ctx, suite.newOrder("alice", baseTime))
	suite.Require().NoError(err)
	suite.Require().NoError(tx.Rollback().Error)

	suite.assertOrderCount(0)
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(userID string, createdAt time.Time) *order.Order {
	loc, err := kernel.NewLocation(51.5001, -0.1239)
	suite.Require().NoError(err)

	margherita, err := order.NewLineItem("Margherita", order.DefaultSize, decimal.RequireFromString("9.99"), nil)
	suite.Require().NoError(err)
	pepperoni, err := order.NewLineItem("Pepperoni", 14, decimal.RequireFromString("11.49"), []order.Topping{
		{Name: "Olives", Price: decimal.RequireFromString("0.50")},
		{Name: "Chilli", Price: decimal.RequireFromString("0.75")},
	})
	suite.Require().NoError(err)

	o, err := order.NewOrder(userID, createdAt, order.Address{
		Name:       "Alice",
		Line1:      "1 Baker Street",
		Line2:      "Flat 2",
		City:       "London",
		PostalCode: "NW1 6XE",
	}, loc, []*order.LineItem{margherita, pepperoni})
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) add(o *order.Order) *order.Order {
	saved, err := suite.repository.Add(context.Background(), o)
	suite.Require().NoError(err)
	return saved
}

// assertOrderCount verifies the number of orders in the database.
func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func ids(orders []*order.Order) []int64 {
	out := make([]int64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID())
	}
	return out
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
