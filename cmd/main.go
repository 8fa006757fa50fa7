package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"journalapi/cmd/analyzer"
	"journalapi/cmd/mt5sync"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Journal CMD"
	app.Usage = "The trading journal command line interface"

	app.Commands = []cli.Command{
		analyzerCMD,
		mt5SyncCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	analyzerCMD = cli.Command{
		Name:        "analyzer",
		Usage:       "run the scheduled pattern analyzer",
		Action:      analyzerAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the scheduled pattern analyzer CMD`,
	}
	mt5SyncCMD = cli.Command{
		Name:        "mt5sync",
		Usage:       "run the MT5 deal sync",
		Action:      mt5SyncAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the MT5 deal sync CMD`,
	}
)

func analyzerAction(_ *cli.Context) error {

	logrus.Info("Starting analyzer CMD")
	logrus.WithField("cmd", "analyzer")

	a := &analyzer.Analyzer{}
	err := a.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func mt5SyncAction(_ *cli.Context) error {

	logrus.Info("Starting mt5sync CMD")
	logrus.WithField("cmd", "mt5sync")

	s := &mt5sync.Syncer{}
	err := s.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
