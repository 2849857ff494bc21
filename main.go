package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/character8/medicx-clinic-central-main/api/handlers"
	"github.com/character8/medicx-clinic-central-main/api/scheduler"
	"github.com/character8/medicx-clinic-central-main/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { // initialize database and router
		log.Fatal(err)
	}

	s := scheduler.NewScheduler(a.Service, a.Service.Medicines, a.Service.Stock, a.Config.AlertEmail)
	s.Start()

	// log.Fatal skips deferred calls, so stop the scheduler on a signal instead
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		s.Stop()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("medicx-clinic-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
