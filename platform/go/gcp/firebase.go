package gcp

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// CredentialsPathEnv optionally points at a service account JSON file for
// local development. When unset the app uses application-default credentials.
const CredentialsPathEnv = "FIREBASE_CONFIG"

// GetApp creates a Firebase App instance. When pathToJson is nil the app falls
// back to application-default credentials.
func GetApp(ctx context.Context, pathToJson *string) (app *firebase.App, err error) {
	if pathToJson != nil {
		sa := option.WithCredentialsFile(*pathToJson)
		app, err = firebase.NewApp(ctx, nil, sa)
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}

	if err != nil {
		return nil, err
	}
	return
}

// InitFirebaseAuth initializes the Firebase App and returns an Auth client.
// Only token verification is used; no Firestore client is created.
func InitFirebaseAuth(ctx context.Context) (*firebase.App, *firebaseauth.Client, error) {
	var credsPath *string
	if p, found := os.LookupEnv(CredentialsPathEnv); found {
		credsPath = &p
	}

	firebaseApp, err := GetApp(ctx, credsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase auth [%w]", err)
	}

	return firebaseApp, fbAuth, nil
}
