package analyzer

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"journalapi/src/database"
	"journalapi/src/executors"
)

type Analyzer struct{}

func (a *Analyzer) Start() error {
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

	// Initialize read-only database
	if err := database.InitReadOnlyDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to read-only database")
		return err
	}

	logrus.Info("Starting scheduled pattern analyzer")

	if err := executors.StartAnalysisLoop(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start analysis loop")
		return err
	}

	return nil
}
