package main

import (
	"fmt"
	"net"
	"net/http"

	"github.com/Cloud-Foundations/Provisioner/lib/log"
)

// startHttpServer serves the default mux, which carries the tricorder
// metrics pages.
func startHttpServer(portNum uint, logger log.DebugLogger) (net.Listener,
	error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", portNum))
	if err != nil {
		return nil, err
	}
	logger.Printf("serving metrics on %s\n", listener.Addr())
	go http.Serve(listener, nil)
	return listener, nil
}
