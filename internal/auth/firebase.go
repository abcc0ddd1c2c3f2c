package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp initializes the Firebase Admin SDK. Returns (nil, nil) when no
// credentials path is configured: the service then runs anonymous-only.
func NewApp(ctx context.Context, credentialsPath string) (*firebase.App, error) {
	if credentialsPath == "" {
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}
