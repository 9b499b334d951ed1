package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/pkg/logger"
)

// Config selects and configures the disks.
type Config struct {
	Default   string // "local" or "s3"
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// ConfigFromEnv reads STORAGE_* and S3_* settings.
func ConfigFromEnv() Config {
	return Config{
		Default:   config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	}
}

// Manager holds the booted disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// Connect always boots the local disk and boots s3 when a bucket is set.
// An s3 failure is logged and leaves the disk disabled; it is an error only
// when s3 is the default.
func Connect(ctx context.Context, c Config) (*Manager, error) {
	m := &Manager{disks: map[string]Disk{}, defaultDisk: c.Default}

	local, err := NewLocal(c.LocalRoot, c.LocalURL)
	if err != nil {
		return nil, err
	}
	m.disks["local"] = local

	if c.S3.Bucket != "" {
		d, err := NewS3(ctx, c.S3)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	if _, ok := m.disks[c.Default]; !ok {
		return nil, fmt.Errorf("storage: default disk %q is not configured", c.Default)
	}
	return m, nil
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk.
func (m *Manager) Default() Disk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disks[m.defaultDisk]
}

// Register plugs in a custom Disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}
