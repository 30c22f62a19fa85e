package utils

import (
	"context"

	"harvestmap/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseAuthClient verifies seller ID tokens.
var FirebaseAuthClient *auth.Client

// FirebaseInit initializes the Firebase App and Auth client.
func FirebaseInit() *auth.Client {
	logger := GetLogger()
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		logger.Fatal("firebase: error initializing app", zap.Error(err))
	}

	client, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal("firebase: error getting Auth client", zap.Error(err))
	}

	FirebaseAuthClient = client
	return client
}
