package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/cache"
	"github.com/rafata1/storefront/config"
	"github.com/rafata1/storefront/database"
	"github.com/rafata1/storefront/kafka"
	"github.com/rafata1/storefront/logging"
	"github.com/rafata1/storefront/memstore"
	"github.com/rafata1/storefront/server"
	"github.com/rafata1/storefront/service/cart"
	"github.com/rafata1/storefront/service/inventory"
	"github.com/rafata1/storefront/service/order"
	"github.com/rafata1/storefront/service/payment"
	"github.com/rafata1/storefront/service/product"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "storefront catalog, cart, checkout and payment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		relayCommand(),
		inventoryWorkerCommand(),
		createMigrationCommand(),
		migrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	conf, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(conf.LogLevel, conf.LogDev)
	if err != nil {
		return config.Config{}, nil, err
	}
	return conf, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

type repos struct {
	product   product.IRepo
	cart      cart.IRepo
	order     order.IRepo
	payment   payment.IRepo
	inventory inventory.IRepo
}

func sqlRepos(db *sqlx.DB) repos {
	return repos{
		product:   product.NewRepo(db),
		cart:      cart.NewRepo(db),
		order:     order.NewRepo(db),
		payment:   payment.NewRepo(db),
		inventory: inventory.NewRepo(db),
	}
}

func memoryRepos(store *memstore.Store) repos {
	return repos{
		product:   store,
		cart:      store,
		order:     store,
		payment:   store,
		inventory: store,
	}
}

func serveCommand() *cobra.Command {
	var memory, relay bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the storefront HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signalContext()
			defer stop()

			var r repos
			if memory {
				store := memstore.New()
				seedDemoCatalog(store)
				r = memoryRepos(store)
				logger.Warn("serving from the in-memory store, data is lost on exit")
			} else {
				db, err := database.Open(conf.Database.Driver, conf.Database.DatabaseDSN)
				if err != nil {
					return err
				}
				defer db.Close()
				r = sqlRepos(db)
			}

			c, err := cache.New(ctx, conf.RedisURL, conf.CacheTTL)
			if err != nil {
				return err
			}

			var producer kafka.IProducer
			if relay {
				producer, err = kafka.NewProducer(conf.KafkaHost, conf.OrderEventsTopic)
				if err != nil {
					return err
				}
				defer producer.Close()
			}

			orders := order.NewService(r.order, producer, c, logger)
			if relay {
				go runRelay(ctx, orders, conf, logger)
			}

			h := server.NewHandler(
				product.NewService(r.product, logger),
				cart.NewService(r.cart, c, logger),
				orders,
				payment.NewService(r.payment, c, logger),
				conf.OwnerHeader,
				logger,
			)
			srv := &http.Server{
				Addr:         conf.HTTPAddr,
				Handler:      server.NewRouter(h, logger),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 35 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", zap.String("addr", conf.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "use an in-memory store seeded with demo products")
	cmd.Flags().BoolVar(&relay, "relay", false, "also relay order events to kafka")
	return cmd
}

func relayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "relay pending order events from the outbox to kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Open(conf.Database.Driver, conf.Database.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			producer, err := kafka.NewProducer(conf.KafkaHost, conf.OrderEventsTopic)
			if err != nil {
				return err
			}
			defer producer.Close()

			ctx, stop := signalContext()
			defer stop()

			runRelay(ctx, order.NewService(order.NewRepo(db), producer, cache.Noop(), logger), conf, logger)
			return nil
		},
	}
}

func runRelay(ctx context.Context, orders order.IService, conf config.Config, logger *zap.Logger) {
	ticker := time.NewTicker(conf.RelayInterval)
	defer ticker.Stop()

	logger.Info("relay started", zap.String("topic", conf.OrderEventsTopic), zap.Duration("interval", conf.RelayInterval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := orders.RelayMessage(ctx, conf.RelayBatch); err != nil {
				logger.Error("relay order events", zap.Error(err))
			}
		}
	}
}

func inventoryWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory-worker",
		Short: "restore stock for cancelled orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Open(conf.Database.Driver, conf.Database.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			consumer, err := kafka.NewConsumer(conf.KafkaHost, conf.OrderEventsTopic)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signalContext()
			defer stop()

			logger.Info("inventory worker started", zap.String("topic", conf.OrderEventsTopic))
			inventory.NewService(inventory.NewRepo(db), consumer, logger).ConsumeOrderEvents(ctx)
			return nil
		},
	}
}

func createMigrationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-create [name]",
		Short: "create sql migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}

			up, down, err := database.CreateMigration(conf.Database.MigrationDir, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Println("Created SQL up script:", up)
			fmt.Println("Created SQL down script:", down)
			return nil
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}

			changed, err := database.MigrateUp(conf.Database.MigrationDir, conf.Database.Driver, conf.Database.DatabaseDSN)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println("No change in migration")
				return nil
			}
			fmt.Println("Migrated up")
			return nil
		},
	}
}
