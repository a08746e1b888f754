// Package handler is the serverless entry point. Warm invocations reuse the
// service built on the first request.
package handler

import (
	"net/http"
	"os"
	"restobook/config"
	"restobook/di"
	"restobook/shared/logger"
	"sync"
)

var service = sync.OnceValue(func() http.Handler {
	logger.InitLogger()
	logger.Configure(config.Get(), os.Stdout)

	return di.InitializeService()
})

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	service().ServeHTTP(w, r)
}
