// Package monitor runs periodic checks over the clinic's inventory.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/metrics"
	"github.com/atinyakov/SchoolClinic/internal/models"
)

// InventorySource lists the current inventory.
type InventorySource interface {
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
}

// LowStock periodically reports items at or below the low-stock threshold
// and refreshes the stock gauges.
type LowStock struct {
	cron     *cron.Cron
	schedule string
	source   InventorySource
	logger   *zap.Logger
}

// NewLowStock creates a monitor that scans on the given cron schedule
// (standard five-field or descriptors such as "@every 1h").
func NewLowStock(schedule string, source InventorySource, logger *zap.Logger) *LowStock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStock{
		cron:     cron.New(),
		schedule: schedule,
		source:   source,
		logger:   logger,
	}
}

// Start runs one scan immediately and then schedules the rest.
func (m *LowStock) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(m.schedule, m.run); err != nil {
		return fmt.Errorf("schedule low-stock scan %q: %w", m.schedule, err)
	}
	m.logger.Info("starting low-stock monitor", zap.String("schedule", m.schedule))
	if _, err := m.Scan(ctx); err != nil {
		m.logger.Error("low-stock scan failed", zap.Error(err))
	}
	m.cron.Start()
	return nil
}

// Stop stops the schedule and waits for a running scan to finish.
func (m *LowStock) Stop() {
	m.logger.Info("stopping low-stock monitor")
	<-m.cron.Stop().Done()
}

func (m *LowStock) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := m.Scan(ctx); err != nil {
		m.logger.Error("low-stock scan failed", zap.Error(err))
	}
}

// Scan returns the items that are low on stock, logging each one.
func (m *LowStock) Scan(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := m.source.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	metrics.ObserveInventory(items)

	var low []models.InventoryItem
	for _, it := range items {
		if !it.Low() {
			continue
		}
		low = append(low, it)
		m.logger.Warn("medicine low on stock",
			zap.Int("id", it.ID),
			zap.String("medicine", it.Name),
			zap.Int("stock", it.Stock),
		)
	}
	return low, nil
}
