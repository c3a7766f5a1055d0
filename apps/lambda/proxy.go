package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/pkg/errors"
)

// proxy feeds API Gateway HTTP API (payload v2) events to an http.Handler.
type proxy struct {
	adapter *httpadapter.HandlerAdapterV2
}

func newProxy(handler http.Handler) proxy {
	return proxy{adapter: httpadapter.NewV2(handler)}
}

func (p proxy) handle(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := p.adapter.ProxyWithContext(ctx, evt)
	if err != nil {
		return resp, errors.Wrap(err, "proxying request")
	}
	return resp, nil
}
