package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"couple-plans-backend-go/internal/models"
)

// firestoreWorkspaceRepository implements the WorkspaceRepository interface using Firestore.
type firestoreWorkspaceRepository struct {
	client      *firestore.Client
	workspaceID string
}

// NewFirestoreWorkspaceRepository creates a new instance of firestoreWorkspaceRepository.
func NewFirestoreWorkspaceRepository(client *firestore.Client, workspaceID string) WorkspaceRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for WorkspaceRepository.")
	}
	return &firestoreWorkspaceRepository{client: client, workspaceID: workspaceID}
}

func (r *firestoreWorkspaceRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(workspacesCollection).Doc(r.workspaceID)
}

// GetLocations returns the shared location suggestions, or an empty list when
// the workspace document has not been created yet.
func (r *firestoreWorkspaceRepository) GetLocations(ctx context.Context) ([]string, error) {
	docSnap, err := r.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get workspace '%s': %w", r.workspaceID, err)
	}
	return decodeLocations(docSnap)
}

// SetLocations merges the location list into the workspace document, stamping updatedAt server-side.
func (r *firestoreWorkspaceRepository) SetLocations(ctx context.Context, locations []string) error {
	if locations == nil {
		locations = []string{}
	}
	data := map[string]interface{}{
		"locations": locations,
		"updatedAt": firestore.ServerTimestamp,
	}
	if _, err := r.doc().Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update locations for workspace '%s': %w", r.workspaceID, err)
	}
	return nil
}

// WatchLocations listens to the workspace document and hands the location list to onChange.
// A missing document is delivered as an empty list.
func (r *firestoreWorkspaceRepository) WatchLocations(ctx context.Context, onChange func([]string)) error {
	it := r.doc().Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("workspace listener failed: %w", err)
		}
		if !snap.Exists() {
			onChange([]string{})
			continue
		}
		locations, err := decodeLocations(snap)
		if err != nil {
			log.Printf("Ignoring workspace snapshot: %v", err)
			continue
		}
		onChange(locations)
	}
}

func decodeLocations(doc *firestore.DocumentSnapshot) ([]string, error) {
	var ws models.Workspace
	if err := doc.DataTo(&ws); err != nil {
		return nil, fmt.Errorf("failed to decode workspace data for ID '%s': %w", doc.Ref.ID, err)
	}
	if ws.Locations == nil {
		return []string{}, nil
	}
	return ws.Locations, nil
}
