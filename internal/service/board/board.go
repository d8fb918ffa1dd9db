// Package board keeps slot-board views fresh: it caches boards in Redis and tells the
// consoles watching a site when its board changes.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/pkg/cache"
	"github.com/guardline/roster-backend/internal/pkg/sse"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

const EventBoardChanged = "board_changed"

func cacheKey(siteID, date string) string {
	return fmt.Sprintf("board:%s:%s", siteID, date)
}

// Publisher implements slot.BoardObserver. Either dependency may be nil.
type Publisher struct {
	kv  cache.KV
	hub *sse.Hub
}

func NewPublisher(kv cache.KV, hub *sse.Hub) *Publisher {
	return &Publisher{kv: kv, hub: hub}
}

// BoardChanged drops the cached board and notifies subscribers of the site.
func (p *Publisher) BoardChanged(ctx context.Context, siteID string, date time.Time) {
	day := utils.FormatDate(date)
	if p.kv != nil {
		if err := p.kv.Delete(ctx, cacheKey(siteID, day)); err != nil {
			slog.Error("Failed to invalidate board cache", "site_id", siteID, "date", day, "error", err)
		}
	}
	if p.hub != nil {
		p.hub.Publish(siteID, sse.Event{Event: EventBoardChanged, Data: map[string]string{"date": day}})
	}
}

// CachedSlotService serves GetBoard from the cache and delegates everything else.
type CachedSlotService struct {
	slot.SlotService
	kv  cache.KV
	ttl time.Duration
}

func NewCachedSlotService(inner slot.SlotService, kv cache.KV, ttl time.Duration) slot.SlotService {
	if kv == nil {
		return inner
	}
	return &CachedSlotService{SlotService: inner, kv: kv, ttl: ttl}
}

// GetBoard implements slot.SlotService. Cache failures fall through to the store.
func (s *CachedSlotService) GetBoard(ctx context.Context, req slot.SiteDateRequest) (slot.BoardResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.BoardResponse{}, err
	}
	key := cacheKey(req.SiteID, req.Date)

	var cached slot.BoardResponse
	err := cache.GetJSON(ctx, s.kv, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("Board cache read failed", "key", key, "error", err)
	}

	board, err := s.SlotService.GetBoard(ctx, req)
	if err != nil {
		return slot.BoardResponse{}, err
	}
	if err := cache.SetJSON(ctx, s.kv, key, board, s.ttl); err != nil {
		slog.Warn("Board cache write failed", "key", key, "error", err)
	}
	return board, nil
}
