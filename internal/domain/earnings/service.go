package earnings

import "context"

// EarningsService is read-only: every call reloads source records and recomputes.
type EarningsService interface {
	GetGuardEarnings(ctx context.Context, req GuardEarningsRequest) (GuardEarningsResponse, error)
	GetSiteEarnings(ctx context.Context, req SiteEarningsRequest) (SiteEarningsResponse, error)
	ListGuardEarnings(ctx context.Context, month string) ([]GuardEarningsResponse, error)

	// ExportGuardEarnings renders ListGuardEarnings as an XLSX workbook
	ExportGuardEarnings(ctx context.Context, month string) ([]byte, error)
}
