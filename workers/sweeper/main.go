// Package main vends a long-running worker to prune expired letters from the
// local file store. Redis-backed deployments expire letters natively via TTL,
// so the sweeper only matters where letters live on disk.
package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"everink.io/ember/common/logging"
	cst "everink.io/ember/constants"
)

const defaultSweepFreq = time.Hour

func main() {
	if err := runSweeper(); err != nil {
		log.WithError(err).Fatal("error running sweeper")
	}
}

func runSweeper() error {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("skip loading env vars from .env file")
	}
	viper.AutomaticEnv()
	logging.SetupLog("EmberSweeper")
	clog := logging.WithFuncName()

	dir := viper.GetString(cst.EnvLetterDir)
	if dir == "" {
		dir = "data/letters"
	}
	freq := viper.GetDuration(cst.EnvSweeperFreq)
	if freq <= 0 {
		freq = defaultSweepFreq
	}
	clog.WithFields(log.Fields{"letterDir": dir, "sweepFrequency": freq}).Info("sweeper starting")

	tkr := time.NewTicker(freq)
	defer tkr.Stop()
	// ensure the worker can be responsive to system signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	for {
		select {
		case <-tkr.C:
			n, err := sweep(dir, time.Now(), cst.LetterTTL)
			if err != nil {
				clog.WithError(err).Error("error sweeping expired letters")
				continue
			}
			clog.WithField("count", n).Debug("expired letters swept")
		case sig := <-sigChan:
			clog.WithField("signal", sig).Info("sweeper shutting down")
			return nil
		}
	}
}

// sweep removes letter records in dir whose age exceeds maxAge, returning the
// number of records removed. A missing dir is not an error since no letters
// may have been written yet.
func sweep(dir string, now time.Time, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	clog := logging.WithFuncName()
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			clog.WithError(err).WithField("file", e.Name()).Warn("error reading letter record info")
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			clog.WithError(err).WithField("file", e.Name()).Warn("error removing expired letter record")
			continue
		}
		removed++
	}
	return removed, nil
}
