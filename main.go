/*
Example application driving the engine package: opens a window and renders
the testbed scene until closed.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/krill-engine/krill/engine"
	"github.com/krill-engine/krill/testbed"
)

func main() {
	game := testbed.NewTestGame()

	e, err := engine.New(game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = e.Shutdown()
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}
}
