package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

const quietPeriod = 2 * time.Second

func watchSubcommand(args []string, logger log.DebugLogger) error {
	if *portNum > 0 {
		listener, err := startHttpServer(*portNum, logger)
		if err != nil {
			return err
		}
		defer listener.Close()
	}
	stop := make(chan struct{})
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Printf("caught %s: stopping\n", sig)
		close(stop)
	}()
	return makeEngine(logger).Watch(stop, quietPeriod)
}
