package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpadapter "pizzatracker/internal/adapters/in/http"
	"pizzatracker/internal/adapters/in/ws"
	"pizzatracker/internal/adapters/out/postgres"
	"pizzatracker/internal/adapters/out/postgres/orderrepo"
	"pizzatracker/internal/adapters/out/postgres/subscriptionrepo"
	"pizzatracker/internal/adapters/out/rabbitmq"
	"pizzatracker/internal/adapters/out/webpush"
	"pizzatracker/internal/core/application/notify"
	"pizzatracker/internal/core/application/usecases/commands"
	"pizzatracker/internal/core/application/usecases/queries"
	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/core/ports"
	"pizzatracker/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived components of the application and
// builds everything else on demand.
type CompositionRoot struct {
	config           Config
	gormDB           *gorm.DB
	uowFactory       *postgres.GormUnitOfWorkFactory
	computer         services.StatusComputer
	dispatchLocation kernel.Location
	queue            *jobs.TrackingQueue
	hub              *ws.Hub
	relay            *rabbitmq.StatusRelay
	logger           *slog.Logger
}

// NewCompositionRoot wires the shared components. relay may be nil, in which
// case snapshots only reach websocket clients.
func NewCompositionRoot(config Config, gormDB *gorm.DB, relay *rabbitmq.StatusRelay, logger *slog.Logger) (*CompositionRoot, error) {
	dispatchLocation, err := config.DispatchLocation()
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:           config,
		gormDB:           gormDB,
		uowFactory:       postgres.NewGormUnitOfWorkFactory(gormDB),
		computer:         services.NewStatusComputer(config.PrepDuration, config.DeliveryDuration),
		dispatchLocation: dispatchLocation,
		queue:            jobs.NewTrackingQueue(config.TrackingQueueCapacity),
		hub:              ws.NewHub(),
		relay:            relay,
		logger:           logger,
	}, nil
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlaceOrderCommandHandler(f, c.queue, c.dispatchLocation, time.Now)
}

func (c *CompositionRoot) CreateSubscribeNotificationsCommandHandler() commands.SubscribeNotificationsCommandHandler {
	var f commands.SubscriptionUoWFactory = FuncSubscriptionUoWFactory(func() commands.SubscriptionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSubscribeNotificationsCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderWithStatusQueryHandler() queries.GetOrderWithStatusQueryHandler {
	return queries.NewGetOrderWithStatusQueryHandler(c.orderRepository(), c.computer, time.Now)
}

func (c *CompositionRoot) CreateGetUserOrdersQueryHandler() queries.GetUserOrdersQueryHandler {
	return queries.NewGetUserOrdersQueryHandler(c.orderRepository(), c.computer, time.Now)
}

// CreateStatusPublisher fans snapshots out to the websocket hub and, when
// configured, to the message broker.
func (c *CompositionRoot) CreateStatusPublisher() ports.StatusPublisher {
	publishers := jobs.FanoutPublisher{c.hub}
	if c.relay != nil {
		publishers = append(publishers, c.relay)
	}
	return publishers
}

func (c *CompositionRoot) CreatePushDispatcher() *notify.PushDispatcher {
	sender := webpush.NewSender(webpush.Config{
		PublicKey:  c.config.VAPIDPublicKey,
		PrivateKey: c.config.VAPIDPrivateKey,
		Subscriber: c.config.VAPIDSubscriber,
	}, nil)
	subscriptions := subscriptionrepo.NewGormSubscriptionRepository(c.gormDB, nil)
	return notify.NewPushDispatcher(subscriptions, sender, c.config.PublicBaseURL, c.logger)
}

func (c *CompositionRoot) CreateOrderTracker() *jobs.OrderTracker {
	return jobs.NewOrderTracker(
		c.orderRepository(),
		c.computer,
		c.CreateStatusPublisher(),
		c.CreatePushDispatcher(),
		c.logger,
		jobs.WithPollInterval(c.config.TrackingPollInterval),
	)
}

// CreateJobManager builds the tracking pool and the recovery job around the
// shared queue.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	pool := jobs.NewTrackingPool(c.queue, c.CreateOrderTracker(), c.config.TrackingMaxConcurrent, c.logger)
	recovery := jobs.NewTrackingRecoveryJob(
		c.orderRepository(),
		pool,
		c.queue,
		c.computer.Lifetime(),
		c.config.TrackingRecoverySchedule,
		c.logger,
	)
	return jobs.NewJobManager(pool, recovery, c.logger)
}

func (c *CompositionRoot) CreateTrackingHandler() http.Handler {
	return ws.NewHandler(c.hub, c.CreateGetOrderWithStatusQueryHandler(), c.logger)
}

func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	placeOrder := c.CreatePlaceOrderCommandHandler()
	subscribe := c.CreateSubscribeNotificationsCommandHandler()
	server := httpadapter.NewServer(
		&placeOrder,
		&subscribe,
		c.CreateGetOrderWithStatusQueryHandler(),
		c.CreateGetUserOrdersQueryHandler(),
		c.logger,
	)
	return httpadapter.NewRouter(server, c.CreateTrackingHandler(), c.logger)
}

// Close releases the broker connection, if any.
func (c *CompositionRoot) Close(_ context.Context) error {
	if c.relay == nil {
		return nil
	}
	return c.relay.Close()
}

func (c *CompositionRoot) orderRepository() *orderrepo.GormOrderRepository {
	return orderrepo.NewGormOrderRepository(c.gormDB, nil)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncSubscriptionUoWFactory func() commands.SubscriptionUoW

func (f FuncSubscriptionUoWFactory) Create() commands.SubscriptionUoW {
	return f()
}
