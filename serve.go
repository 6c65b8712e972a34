package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"varchess/internal/back"
	"varchess/internal/config"
	"varchess/internal/web"
)

func serve() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.DatabasePath)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	server := web.NewServer(b, conf.ListenAddress)
	go server.Serve(&wg, done)

	sig := <-signaled
	log.Printf("received signal %d", sig)
	close(done)
	wg.Wait()

	log.Print("shutdown complete")

	return nil
}
