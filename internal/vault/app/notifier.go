package app

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/aussiebroadwan/vaultkey/internal/vault/notify"
)

// initNotifier selects how other sessions learn about a rotation. The queue
// notifier also runs the asynq worker that delivers its tasks, through NATS
// when a NATS URL is configured and to the log otherwise.
func (app *Application) initNotifier() error {
	switch app.cfg.Notifier {
	case NotifierNATS:
		n, err := app.natsNotifier()
		if err != nil {
			return err
		}
		app.notifier = n

	case NotifierQueue:
		redis := asynq.RedisClientOpt{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		}

		var delivery notify.Notifier = notify.LogNotifier{}
		if app.cfg.NATSURL != "" {
			n, err := app.natsNotifier()
			if err != nil {
				return err
			}
			delivery = n
		}

		app.queueClient = asynq.NewClient(redis)
		app.notifier = notify.NewQueueNotifier(app.queueClient, notify.QueueOptions{
			MaxRetry: app.cfg.QueueMaxRetry,
			Timeout:  app.cfg.NotifyTimeout,
		})

		logLevel := asynq.InfoLevel
		if app.cfg.Env != "dev" {
			logLevel = asynq.WarnLevel
		}
		app.queueServer = asynq.NewServer(redis, asynq.Config{
			Concurrency:    max(app.cfg.QueueConcurrency, 1),
			LogLevel:       logLevel,
			RetryDelayFunc: notify.RetryDelay,
		})
		app.queueMux = asynq.NewServeMux()
		app.queueMux.Handle(notify.TaskTypeLogout, &notify.LogoutTaskHandler{Next: delivery})

	default:
		app.notifier = notify.LogNotifier{}
	}

	app.logger.Info("logout notifier configured", "notifier", app.cfg.Notifier)
	return nil
}

func (app *Application) natsNotifier() (*notify.NATSNotifier, error) {
	conn, err := notify.ConnectNATS(app.cfg.NATSURL, "vaultkey", app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nats notifier: %w", err)
	}
	app.natsConn = conn
	return notify.NewNATSNotifier(conn, app.cfg.NATSSubjectPrefix), nil
}
