package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"couple-plans-backend-go/internal/models"
)

const (
	workspacesCollection = "workspaces"
	plansCollection      = "plans"
)

// firestorePlanRepository implements the PlanRepository interface using Firestore.
// Plans are stored under workspaces/{workspaceID}/plans/{planID}.
type firestorePlanRepository struct {
	client      *firestore.Client
	workspaceID string
}

// NewFirestorePlanRepository creates a new instance of firestorePlanRepository.
func NewFirestorePlanRepository(client *firestore.Client, workspaceID string) PlanRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PlanRepository.")
	}
	return &firestorePlanRepository{client: client, workspaceID: workspaceID}
}

func (r *firestorePlanRepository) plans() *firestore.CollectionRef {
	return r.client.Collection(workspacesCollection).Doc(r.workspaceID).Collection(plansCollection)
}

func (r *firestorePlanRepository) query() firestore.Query {
	return r.plans().OrderBy("updatedAt", firestore.Desc)
}

// List retrieves every plan of the workspace, most recently updated first.
func (r *firestorePlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	iter := r.query().Documents(ctx)
	defer iter.Stop()

	plans := []models.Plan{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate plans: %w", err)
		}
		if plan, ok := decodeOrSkip(doc); ok {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

// GetByID retrieves a single plan document.
func (r *firestorePlanRepository) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	if planID == "" {
		return nil, errors.New("planID cannot be empty for GetByID operation")
	}
	docSnap, err := r.plans().Doc(planID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan with ID '%s': %w", planID, err)
	}
	plan, err := decodePlan(docSnap)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Upsert writes the complete plan document, creating it when missing.
func (r *firestorePlanRepository) Upsert(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty for Upsert operation")
	}
	if _, err := r.plans().Doc(plan.ID).Set(ctx, plan); err != nil {
		return fmt.Errorf("failed to write plan with ID '%s': %w", plan.ID, err)
	}
	return nil
}

// Delete removes a plan document.
// Deleting a document that does not exist is not an error.
func (r *firestorePlanRepository) Delete(ctx context.Context, planID string) error {
	if planID == "" {
		return errors.New("planID cannot be empty for Delete operation")
	}
	if _, err := r.plans().Doc(planID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("failed to delete plan with ID '%s': %w", planID, err)
	}
	return nil
}

// Watch listens to the plans query and hands every full snapshot to onChange.
// It blocks until ctx is cancelled (returning nil) or the listener fails.
func (r *firestorePlanRepository) Watch(ctx context.Context, onChange func([]models.Plan)) error {
	it := r.query().Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("plans listener failed: %w", err)
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("failed to read plans snapshot: %w", err)
		}
		plans := make([]models.Plan, 0, len(docs))
		for _, doc := range docs {
			if plan, ok := decodeOrSkip(doc); ok {
				plans = append(plans, plan)
			}
		}
		onChange(plans)
	}
}

func decodePlan(doc *firestore.DocumentSnapshot) (models.Plan, error) {
	var d planDocument
	if err := doc.DataTo(&d); err != nil {
		return models.Plan{}, fmt.Errorf("failed to decode plan data for ID '%s': %w", doc.Ref.ID, err)
	}
	return d.toPlan(doc.Ref.ID), nil
}

// decodeOrSkip drops a document that still cannot be decoded, so List and Watch
// return the same set of plans for the same data.
func decodeOrSkip(doc *firestore.DocumentSnapshot) (models.Plan, bool) {
	plan, err := decodePlan(doc)
	if err != nil {
		log.Printf("Skipping plan document %s: %v", doc.Ref.ID, err)
		return models.Plan{}, false
	}
	return plan, true
}
