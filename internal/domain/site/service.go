package site

import "context"

type SiteService interface {
	CreateSite(ctx context.Context, req CreateSiteRequest) (SiteResponse, error)
	GetSite(ctx context.Context, id string) (SiteResponse, error)
	ListSites(ctx context.Context, filter SiteFilter) (ListSiteResponse, error)
	UpdateSite(ctx context.Context, req UpdateSiteRequest) (SiteResponse, error)
	DeleteSite(ctx context.Context, id string) error
}
