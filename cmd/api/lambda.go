package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"weatherassistant/internal/core"
)

// runLambda serves API Gateway proxy events through the same router used by
// the HTTP server. WebSocket sessions are not available in this mode.
func runLambda(srv *core.Server, logger *slog.Logger) error {
	logger.Info("starting in Lambda mode")
	lambda.Start(proxyHandler(srv.Handler()))
	return nil
}

// proxyHandler adapts an http.Handler to the API Gateway REST proxy
// integration. The gateway's request ID becomes the X-Request-Id unless the
// caller supplied one.
func proxyHandler(h http.Handler) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := httpadapter.New(h)
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		propagateRequestID(&event)
		return adapter.ProxyWithContext(ctx, event)
	}
}

func propagateRequestID(event *events.APIGatewayProxyRequest) {
	id := event.RequestContext.RequestID
	if id == "" {
		return
	}
	for k := range event.Headers {
		if strings.EqualFold(k, "X-Request-Id") {
			return
		}
	}
	for k := range event.MultiValueHeaders {
		if strings.EqualFold(k, "X-Request-Id") {
			return
		}
	}

	if event.Headers == nil {
		event.Headers = make(map[string]string)
	}
	event.Headers["X-Request-Id"] = id
	if event.MultiValueHeaders != nil {
		event.MultiValueHeaders["X-Request-Id"] = []string{id}
	}
}
