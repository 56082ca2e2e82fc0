package main

import (
	"log"

	"github.com/lintang-b-s/go-suggest/pkg/di"
)

func main() {
	server, cleanup, err := di.InitializeSuggestService()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := server.Wait(); err != nil {
		server.Log.Error(err.Error())
	}
}
