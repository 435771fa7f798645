package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-inventory/internal/domain/event"
	"github.com/sanosuguru/go-event-inventory/internal/domain/registration"
	"github.com/sanosuguru/go-event-inventory/internal/domain/tickettype"
	redisinfra "github.com/sanosuguru/go-event-inventory/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-inventory/internal/pkg/logger"
)

// LedgerService は在庫・売上の読み取り専用集計を提供する
// 何も変更しない。書き込みは FulfillmentService が担う
type LedgerService struct {
	eventRepo event.Repository
	tierRepo  tickettype.Repository
	regRepo   registration.Repository
	cache     *redisinfra.AvailabilityCache

	// now は集計の基準時刻を返す。テストで差し替える
	now func() time.Time
}

// NewLedgerService はLedgerServiceを作成する
func NewLedgerService(er event.Repository, tr tickettype.Repository, rr registration.Repository, cache *redisinfra.AvailabilityCache) *LedgerService {
	return &LedgerService{
		eventRepo: er,
		tierRepo:  tr,
		regRepo:   rr,
		cache:     cache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AvailableCapacity はイベント配下の各チケット区分の残り在庫数を返す
// sold > quantity のデータ不整合は丸めずエラーとして呼び出し元に返す
func (s *LedgerService) AvailableCapacity(ctx context.Context, eventID string) (map[string]int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	// キャッシュから取得を試みる
	if s.cache != nil {
		cached, err := s.cache.GetCapacity(ctx, eventID)
		if err == nil {
			logger.Debug("空き在庫キャッシュヒット", zap.String("event_id", eventID))
			return cached, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空き在庫キャッシュ取得エラー", zap.Error(err))
		}
	}

	tiers, err := s.tierRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("チケット区分取得に失敗: %w", err)
	}

	capacity := make(map[string]int, len(tiers))
	for _, tier := range tiers {
		available, err := tier.Available()
		if err != nil {
			return nil, fmt.Errorf("チケット区分 %s: %w", tier.Name, err)
		}
		capacity[tier.Name] = available
	}

	// 不整合のない結果だけをキャッシュする
	if s.cache != nil {
		if cacheErr := s.cache.SetCapacity(ctx, eventID, capacity); cacheErr != nil {
			logger.Warn("空き在庫キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return capacity, nil
}

// TicketsSold はイベント全区分の販売数合計を返す。区分がなければ0
func (s *LedgerService) TicketsSold(ctx context.Context, eventID string) (int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return 0, err
	}

	tiers, err := s.tierRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("チケット区分取得に失敗: %w", err)
	}

	total := 0
	for _, tier := range tiers {
		total += tier.Sold
	}
	return total, nil
}

// RevenueSummary はイベントの売上集計結果
type RevenueSummary struct {
	EventID            string
	TotalRevenue       decimal.Decimal
	TotalRegistrations int
	TotalTicketsSold   int
	AverageTicketValue decimal.Decimal
}

// Revenue はイベントの売上を集計する。支払い済み（completed）の申込だけが対象
// 申込が1件もない場合の平均は0（エラーにもNaNにもしない）
func (s *LedgerService) Revenue(ctx context.Context, eventID string) (*RevenueSummary, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	regs, err := s.regRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("申込取得に失敗: %w", err)
	}

	summary := &RevenueSummary{
		EventID:            eventID,
		TotalRevenue:       decimal.Zero,
		AverageTicketValue: decimal.Zero,
	}
	for _, r := range regs {
		if !r.IsCompleted() {
			continue
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(r.TotalAmount)
		summary.TotalRegistrations++
		summary.TotalTicketsSold += r.Quantity
	}

	if summary.TotalRegistrations > 0 {
		summary.AverageTicketValue = summary.TotalRevenue.DivRound(
			decimal.NewFromInt(int64(summary.TotalRegistrations)), 2)
	}

	return summary, nil
}

// CategoryStat はカテゴリ別の集計結果
type CategoryStat struct {
	Category       string
	EventCount     int
	ActiveEvents   int
	UpcomingEvents int
}

// CategoryBreakdown は全イベントをカテゴリ別に集計する
// 並び順はイベント数の降順、同数の場合はカテゴリ名の昇順で決定的にする
func (s *LedgerService) CategoryBreakdown(ctx context.Context) ([]CategoryStat, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}

	now := s.now()
	byCategory := make(map[string]*CategoryStat)
	for _, e := range events {
		stat, ok := byCategory[e.Category]
		if !ok {
			stat = &CategoryStat{Category: e.Category}
			byCategory[e.Category] = stat
		}
		stat.EventCount++
		if e.IsActive() {
			stat.ActiveEvents++
		}
		if e.IsUpcoming(now) {
			stat.UpcomingEvents++
		}
	}

	stats := make([]CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EventCount != stats[j].EventCount {
			return stats[i].EventCount > stats[j].EventCount
		}
		return stats[i].Category < stats[j].Category
	})

	return stats, nil
}

// StatusStat は状態別のイベント数
type StatusStat struct {
	Status     event.Status
	EventCount int
}

// StatusBreakdown は全イベントを状態別に集計する
// 並び順はイベント数の降順、同数の場合は状態名の昇順
func (s *LedgerService) StatusBreakdown(ctx context.Context) ([]StatusStat, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}

	byStatus := make(map[event.Status]int)
	for _, e := range events {
		byStatus[e.Status]++
	}

	stats := make([]StatusStat, 0, len(byStatus))
	for status, count := range byStatus {
		stats = append(stats, StatusStat{Status: status, EventCount: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EventCount != stats[j].EventCount {
			return stats[i].EventCount > stats[j].EventCount
		}
		return stats[i].Status < stats[j].Status
	})

	return stats, nil
}

// EventRanking はイベント別の売上ランキング行
type EventRanking struct {
	EventID           string
	EventName         string
	RegistrationCount int
	TicketsSold       int
	Revenue           decimal.Decimal
}

// TopEvents は売上上位のイベントを返す
// 順位は売上の降順、同額なら販売数の降順、それも同じならイベントIDの昇順
func (s *LedgerService) TopEvents(ctx context.Context, limit int) ([]EventRanking, error) {
	if limit <= 0 {
		limit = 10
	}

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}
	completed, err := s.regRepo.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("申込取得に失敗: %w", err)
	}

	byEvent := make(map[string]*EventRanking, len(events))
	for _, e := range events {
		byEvent[e.ID] = &EventRanking{
			EventID:   e.ID,
			EventName: e.Name,
			Revenue:   decimal.Zero,
		}
	}
	for _, r := range completed {
		ranking, ok := byEvent[r.EventID]
		if !ok {
			// 参照先イベントが消えている申込は集計から除外する
			continue
		}
		ranking.RegistrationCount++
		ranking.TicketsSold += r.Quantity
		ranking.Revenue = ranking.Revenue.Add(r.TotalAmount)
	}

	rankings := make([]EventRanking, 0, len(byEvent))
	for _, ranking := range byEvent {
		rankings = append(rankings, *ranking)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if !rankings[i].Revenue.Equal(rankings[j].Revenue) {
			return rankings[i].Revenue.GreaterThan(rankings[j].Revenue)
		}
		if rankings[i].TicketsSold != rankings[j].TicketsSold {
			return rankings[i].TicketsSold > rankings[j].TicketsSold
		}
		return rankings[i].EventID < rankings[j].EventID
	})

	if len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings, nil
}

// PendingSummary は支払い待ち申込のサマリ
type PendingSummary struct {
	RegistrationID string
	EventID        string
	CustomerName   string
	CustomerEmail  string
	TotalAmount    decimal.Decimal
	RegisteredAt   time.Time
}

// PendingOlderThan は指定時間より前に申し込まれた支払い待ちの申込を返す
// 純粋な読み取りであり、副作用はない
func (s *LedgerService) PendingOlderThan(ctx context.Context, olderThan time.Duration) ([]PendingSummary, error) {
	if olderThan < 0 {
		return nil, ErrInvalidDuration
	}

	cutoff := s.now().Add(-olderThan)
	regs, err := s.regRepo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("支払い待ち申込取得に失敗: %w", err)
	}

	summaries := make([]PendingSummary, len(regs))
	for i, r := range regs {
		summaries[i] = PendingSummary{
			RegistrationID: r.ID,
			EventID:        r.EventID,
			CustomerName:   r.CustomerName,
			CustomerEmail:  r.CustomerEmail,
			TotalAmount:    r.TotalAmount,
			RegisteredAt:   r.RegisteredAt,
		}
	}
	return summaries, nil
}

// PaymentStatusStat はイベント×支払い状態の集計行
type PaymentStatusStat struct {
	EventID           string
	PaymentStatus     registration.PaymentStatus
	RegistrationCount int
	TicketCount       int
	TotalAmount       decimal.Decimal
}

// PaymentStatusByEvent は全申込をイベントと支払い状態で集計する
// 並び順はイベントID昇順、次に支払い状態の昇順
func (s *LedgerService) PaymentStatusByEvent(ctx context.Context) ([]PaymentStatusStat, error) {
	regs, err := s.regRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("申込取得に失敗: %w", err)
	}

	type key struct {
		eventID string
		status  registration.PaymentStatus
	}
	byKey := make(map[key]*PaymentStatusStat)
	for _, r := range regs {
		k := key{eventID: r.EventID, status: r.PaymentStatus}
		stat, ok := byKey[k]
		if !ok {
			stat = &PaymentStatusStat{
				EventID:       r.EventID,
				PaymentStatus: r.PaymentStatus,
				TotalAmount:   decimal.Zero,
			}
			byKey[k] = stat
		}
		stat.RegistrationCount++
		stat.TicketCount += r.Quantity
		stat.TotalAmount = stat.TotalAmount.Add(r.TotalAmount)
	}

	stats := make([]PaymentStatusStat, 0, len(byKey))
	for _, stat := range byKey {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EventID != stats[j].EventID {
			return stats[i].EventID < stats[j].EventID
		}
		return stats[i].PaymentStatus < stats[j].PaymentStatus
	})

	return stats, nil
}
