package guard

import "context"

type GuardService interface {
	CreateGuard(ctx context.Context, req CreateGuardRequest) (GuardResponse, error)
	GetGuard(ctx context.Context, id string) (GuardResponse, error)
	ListGuards(ctx context.Context, filter GuardFilter) (ListGuardResponse, error)

	// ListGuardsForSelection lists active guards with the selected ones first
	ListGuardsForSelection(ctx context.Context, selectedIDs []string) ([]GuardResponse, error)

	UpdateGuard(ctx context.Context, req UpdateGuardRequest) (GuardResponse, error)
	DeleteGuard(ctx context.Context, id string) error
}
