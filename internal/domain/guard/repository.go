package guard

import "context"

type GuardRepository interface {
	Create(ctx context.Context, guard Guard) (Guard, error)
	GetByID(ctx context.Context, id string) (Guard, error)
	GetByIDs(ctx context.Context, ids []string) ([]Guard, error)
	List(ctx context.Context, filter GuardFilter) ([]Guard, int64, error)
	ExistsByBadgeNumber(ctx context.Context, badgeNumber string, excludeID *string) (bool, error)
	Update(ctx context.Context, guard Guard) error
	Delete(ctx context.Context, id string) error
}
