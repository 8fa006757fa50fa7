package mt5sync

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"journalapi/src/database"
	"journalapi/src/executors"
)

type Syncer struct{}

func (s *Syncer) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	logrus.Info("Starting MT5 deal sync")

	if err := executors.StartSyncLoop(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start sync loop")
		return err
	}

	return nil
}
