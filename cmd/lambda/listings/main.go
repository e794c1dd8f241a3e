package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"elite-rental-funnel/internal/handlers"
	"elite-rental-funnel/internal/logging"
	"elite-rental-funnel/pkg/lambda"
	"elite-rental-funnel/pkg/server"
)

func main() {
	warm := server.GetWarmContainer()
	container, err := warm.Get()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	logging.Setup(container.Config.Log)

	listingsHandler := handlers.NewListingsHandler(container.Proxy)
	awslambda.StartWithOptions(func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return handle(ctx, listingsHandler, event)
	}, awslambda.WithEnableSIGTERM(func() {
		if err := warm.Cleanup(); err != nil {
			logrus.WithError(err).Warn("Container cleanup failed")
		}
	}))
}

func handle(ctx context.Context, h *handlers.ListingsHandler, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := lambda.FromAPIGateway(event)
	if err != nil {
		return handlers.BadRequest(err).ToAPIGateway(), nil
	}

	resp, err := h.HandleGet(ctx, req)
	if err != nil {
		return handlers.FunctionFailure(err).ToAPIGateway(), nil
	}
	return resp.ToAPIGateway(), nil
}
