package database

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"tickethub/config"
)

// Client wraps the Firestore connection together with the collection names.
type Client struct {
	fs      *firestore.Client
	tickets string
	servers string
}

// Database is the global store instance
var Database *Client

// ConnectDb establishes the Firestore connection. The service account comes
// from FIREBASE_CREDENTIALS_JSON, FIREBASE_CREDENTIALS_FILE, or application
// default credentials, in that order.
func ConnectDb() {
	ctx := context.Background()

	var app *firebase.App
	var err error

	if credJSON := config.AppConfig.FirebaseCredentialsJSON; credJSON != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := config.AppConfig.FirebaseCredentialsFile; credFile != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credFile))
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		log.Fatalf("Failed to initialize Firebase app: %v", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}

	Database = &Client{
		fs:      fs,
		tickets: config.AppConfig.TicketsCollection,
		servers: config.AppConfig.ServersCollection,
	}
}

// Firestore exposes the raw client for the change-feed listeners.
func (c *Client) Firestore() *firestore.Client {
	return c.fs
}

// TicketsCollection returns the name of the tickets collection.
func (c *Client) TicketsCollection() string {
	return c.tickets
}

// Tickets returns the tickets collection reference.
func (c *Client) Tickets() *firestore.CollectionRef {
	return c.fs.Collection(c.tickets)
}

// Servers returns the per-guild config collection reference.
func (c *Client) Servers() *firestore.CollectionRef {
	return c.fs.Collection(c.servers)
}

// Messages returns the message sub-collection of one ticket.
func (c *Client) Messages(ticketID string) *firestore.CollectionRef {
	return c.Tickets().Doc(ticketID).Collection("messages")
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	if c.fs != nil {
		return c.fs.Close()
	}
	return nil
}
