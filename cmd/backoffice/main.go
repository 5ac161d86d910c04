// Command backoffice runs the accounting firm back-office API.
package main

//go:generate swag init --generalInfo main.go --dir ./,../../internal/api/handler,../../internal/core/domain --output ../../docs --outputTypes go --parseInternal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// @title                       Back-office API
// @version                     1.0
// @description                 Client book, credentials, tasks, invoicing and fiscal calendar of an accounting firm.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
