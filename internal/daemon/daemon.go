// Package daemon provides the background loop that drives automatic
// synchronization.
//
// The daemon:
//  1. Probes remote connectivity and flips the engine's offline flag
//  2. Triggers a sync cycle on a recurring timer when auto-sync is on
//  3. Handles graceful shutdown
//
// Manual syncs go through the engine directly; the daemon only adds the
// timer-driven trigger and the connectivity signal on top.
package daemon

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	syncpkg "github.com/inklet-app/inklet/internal/sync"
)

// Config holds configuration for the daemon.
type Config struct {
	// SyncInterval is how often the automatic trigger fires.
	SyncInterval time.Duration

	// ProbeInterval is how often connectivity is probed.
	ProbeInterval time.Duration

	// AutoSync enables the timer-driven trigger. When false the daemon
	// still probes connectivity so observers see the offline flag.
	AutoSync bool

	// GuestMode marks a local-only session; automatic syncs are
	// suppressed entirely.
	GuestMode bool

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:  time.Minute,
		ProbeInterval: 15 * time.Second,
		AutoSync:      true,
		Logger:        log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates connectivity probing and timer-driven sync.
type Daemon struct {
	engine *syncpkg.Engine
	remote syncpkg.Remote
	config *Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance. Use Start() to begin probing and
// syncing.
func New(engine *syncpkg.Engine, remote syncpkg.Remote, config *Config) (*Daemon, error) {
	if engine == nil {
		return nil, errors.New("engine cannot be nil")
	}
	if remote == nil {
		return nil, errors.New("remote cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}
	if config.SyncInterval <= 0 {
		config.SyncInterval = time.Minute
	}
	if config.ProbeInterval <= 0 {
		config.ProbeInterval = 15 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		engine: engine,
		remote: remote,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start begins the daemon's operation. This blocks until ctx is
// cancelled or the daemon is stopped.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	// Probe once up front so the first tick doesn't fire blind.
	d.probe()

	d.wg.Add(2)
	go d.probeLoop()
	go d.syncLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")
	d.cancel()
	d.wg.Wait()
	d.config.Logger.Println("Daemon stopped")
	return nil
}

// probeLoop keeps the offline flag current.
func (d *Daemon) probeLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.probe()
		}
	}
}

// probe pings the remote and flips the offline flag on transitions.
func (d *Daemon) probe() {
	if !d.remote.IsConfigured() {
		return
	}

	wasOffline := d.engine.Status().Status().Offline
	err := d.remote.Ping(d.ctx)
	offline := err != nil

	if offline != wasOffline {
		if offline {
			d.config.Logger.Printf("Connectivity lost: %v", err)
		} else {
			d.config.Logger.Println("Connectivity restored")
		}
		d.engine.SetOffline(offline)
	}
}

// syncLoop fires the automatic trigger on the configured interval.
func (d *Daemon) syncLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.autoSync()
		}
	}
}

// autoSync runs one automatic cycle. In-flight, offline, and
// unconfigured conditions are no-ops for the automatic trigger; real
// failures are logged and left for the next tick (no immediate retry).
func (d *Daemon) autoSync() {
	if !d.config.AutoSync || d.config.GuestMode {
		return
	}

	err := d.engine.SyncNow(d.ctx)
	switch {
	case err == nil:
	case errors.Is(err, syncpkg.ErrSyncInFlight),
		errors.Is(err, syncpkg.ErrOffline),
		errors.Is(err, syncpkg.ErrNotConfigured):
		// Expected suppressions for the automatic trigger.
	default:
		d.config.Logger.Printf("Auto-sync failed: %v", err)
	}
}
