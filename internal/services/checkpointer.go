package services

import (
	"context"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/ledger"
	"auction-ledger/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Checkpointer owns the save/restore lifecycle of the aggregate:
// Restore at process start, Save before shutdown, and optionally a
// cron-driven autosave in between. Save replaces the previous
// snapshot wholesale.
type Checkpointer struct {
	store        *ledger.Store
	snapshots    domain.SnapshotStore
	cron         *cron.Cron
	autosaveSpec string
	log          logger.Logger
}

func NewCheckpointer(store *ledger.Store, snapshots domain.SnapshotStore,
	autosaveSpec string, log logger.Logger) *Checkpointer {
	return &Checkpointer{
		store:        store,
		snapshots:    snapshots,
		cron:         cron.New(),
		autosaveSpec: autosaveSpec,
		log:          log,
	}
}

// Restore loads the latest snapshot into the store. An absent
// snapshot initializes fresh state; a corrupted one is returned as-is
// and the caller must refuse to start.
func (c *Checkpointer) Restore(ctx context.Context) error {
	data, err := c.snapshots.Read(ctx)
	if err != nil {
		return err
	}
	return c.store.RestoreSnapshot(data)
}

// Save encodes the whole aggregate and writes it to the snapshot
// store, replacing any previous snapshot.
func (c *Checkpointer) Save(ctx context.Context) error {
	data, err := c.store.EncodeSnapshot()
	if err != nil {
		return err
	}
	if err := c.snapshots.Write(ctx, data); err != nil {
		return err
	}
	c.log.Info("Snapshot saved", "bytes", len(data))
	return nil
}

// Start begins periodic autosaving. A no-op when no spec is
// configured.
func (c *Checkpointer) Start(ctx context.Context) error {
	if c.autosaveSpec == "" {
		return nil
	}

	c.log.Info("Starting snapshot autosave", "spec", c.autosaveSpec)

	_, err := c.cron.AddFunc(c.autosaveSpec, func() {
		if err := c.Save(ctx); err != nil {
			c.log.Error("Autosave failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

func (c *Checkpointer) Stop() error {
	c.log.Info("Stopping snapshot autosave")
	c.cron.Stop()
	return nil
}
