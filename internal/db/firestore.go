package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"couple-plans-backend-go/internal/config"
)

var (
	// fsClient is the global Firestore client instance.
	fsClient *firestore.Client
	// fbAuthClient is the global Firebase Auth client instance.
	fbAuthClient *auth.Client
)

// CredentialsOption picks the Google credentials source from config:
// a service account file, a Base64 encoded service account JSON, or nil for ADC.
func CredentialsOption(appConfig *config.Config) (option.ClientOption, error) {
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); err != nil {
			return nil, fmt.Errorf("credentials file %q: %w", appConfig.GoogleApplicationCredentials, err)
		}
		return option.WithCredentialsFile(appConfig.GoogleApplicationCredentials), nil
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decodedJSON), nil
	default:
		return nil, nil
	}
}

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore and Auth clients.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	credsOption, err := CredentialsOption(appConfig)
	if err != nil {
		return err
	}

	firebaseAppConfig := &firebase.Config{ProjectID: appConfig.FirebaseProjectID}

	var app *firebase.App
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, firebaseAppConfig, credsOption)
	} else {
		logger.Info("Initializing Firebase using Application Default Credentials")
		app, err = firebase.NewApp(ctx, firebaseAppConfig)
	}
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firebase Admin SDK initialized", zap.String("projectId", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the global Firestore client.
// Callers should check if the client is nil, implying InitFirestore hasn't been called or failed.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// Close releases the Firestore client.
func Close() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}
