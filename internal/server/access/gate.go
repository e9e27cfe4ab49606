package access

import (
	"context"

	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

// Assignments answers whether a principal is assigned to a document.
type Assignments interface {
	IsAssigned(ctx context.Context, documentID uint64, principalID string) (bool, error)
}

// AssignmentGate authorizes requesters assigned to the document.
// Anonymous requesters are never authorized.
type AssignmentGate struct {
	assignments Assignments
}

func NewAssignmentGate(a Assignments) *AssignmentGate {
	return &AssignmentGate{assignments: a}
}

func (g *AssignmentGate) IsAuthorized(ctx context.Context, doc *models.Document, requester models.Requester) (bool, error) {
	if requester.Anonymous() {
		return false, nil
	}
	return g.assignments.IsAssigned(ctx, doc.ID, requester.PrincipalID)
}
