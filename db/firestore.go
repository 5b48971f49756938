package db

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-fleetmap/types"
)

const occupancyCollection = "occupancy"

// FirestoreStore writes one document per snapshot in the occupancy collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore decodes the base64 service account and opens a Firestore client.
func NewFirestoreStore(ctx context.Context, encodedCreds string) (*FirestoreStore, error) {
	if encodedCreds == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS is not set")
	}
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("decoding Firestore credentials: %w", err)
	}

	opt := option.WithCredentialsJSON(creds)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting Firestore client: %w", err)
	}
	log.Info("Firestore client ready")
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) SaveOccupancy(ctx context.Context, snap types.OccupancySnapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("occupancy snapshot for session %s has no id", snap.SessionID)
	}
	_, err := s.client.Collection(occupancyCollection).Doc(snap.ID).Create(ctx, snap)
	if status.Code(err) == codes.AlreadyExists {
		log.WithField("snapshot_id", snap.ID).Debug("Occupancy snapshot already saved")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save occupancy snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *FirestoreStore) LatestOccupancy(ctx context.Context, sessionID string) (types.OccupancySnapshot, error) {
	var snap types.OccupancySnapshot

	docs, err := s.client.Collection(occupancyCollection).
		Where("sessionId", "==", sessionID).
		OrderBy("takenAt", firestore.Desc). // latest first
		Limit(1).
		Documents(ctx).
		GetAll()
	if status.Code(err) == codes.FailedPrecondition {
		// sessionId + takenAt needs a composite index
		return snap, fmt.Errorf("occupancy query needs a Firestore index: %w", err)
	}
	if err != nil {
		return snap, fmt.Errorf("error executing occupancy query: %w", err)
	}
	if len(docs) == 0 {
		return snap, ErrNotFound
	}

	if err := docs[0].DataTo(&snap); err != nil {
		return snap, fmt.Errorf("error converting document %s to OccupancySnapshot: %w", docs[0].Ref.ID, err)
	}
	snap.ID = docs[0].Ref.ID
	return snap, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
