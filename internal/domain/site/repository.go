package site

import "context"

type SiteRepository interface {
	Create(ctx context.Context, site Site) (Site, error)
	GetByID(ctx context.Context, id string) (Site, error)
	List(ctx context.Context, filter SiteFilter) ([]Site, int64, error)
	Update(ctx context.Context, site Site) error
	Delete(ctx context.Context, id string) error
}
