package storage

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// Manager scopes all archive file I/O under one root directory.
type Manager struct {
	root string
}

func New(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &Manager{root: root}, nil
}

func (m *Manager) Root() string {
	return m.root
}

// Path resolves a file name inside the storage root.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.root, name)
}

func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (m *Manager) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}

func (m *Manager) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes a file, treating an already-absent file as success.
func (m *Manager) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *Manager) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

type DiskUsage struct {
	TotalBytes  uint64
	FreeBytes   uint64
	UsedBytes   uint64
	UsedPercent float64
}

// Usage reports filesystem capacity at the storage root.
func (m *Manager) Usage() (DiskUsage, error) {
	stat, err := disk.Usage(m.root)
	if err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{
		TotalBytes:  stat.Total,
		FreeBytes:   stat.Free,
		UsedBytes:   stat.Used,
		UsedPercent: stat.UsedPercent,
	}, nil
}
