// Package backup writes point-in-time archives of the registry's slots to
// the filesystem and restores the newest one on demand. Each archive is a
// directory named by its id; manifest.latest.json points at the newest.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"novareg/internal/registry"
)

// Manifest identifies the newest archive.
type Manifest struct {
	BackupID             string `json:"backupId"`
	CreatedAtEpochSecond int64  `json:"createdAt"`
}

// Archive is the on-disk form of one backup: the raw JSON value of each
// slot. A slot absent at backup time stays absent here.
type Archive struct {
	Orders    json.RawMessage `json:"orders,omitempty"`
	History   json.RawMessage `json:"history,omitempty"`
	Processed json.RawMessage `json:"processedFiles,omitempty"`
}

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Write archives the store's current slots under a timestamped id and
// republishes the manifest. It returns the new archive id.
func (w *Writer) Write(st registry.Store) (string, error) {
	id := fmt.Sprintf("bk-%s", time.Now().UTC().Format("20060102T150405"))
	dir := filepath.Join(w.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	var a Archive
	slots := []struct {
		name string
		dst  *json.RawMessage
	}{
		{registry.SlotOrders, &a.Orders},
		{registry.SlotHistory, &a.History},
		{registry.SlotFiles, &a.Processed},
	}
	for _, s := range slots {
		raw, found, err := st.Get(s.name)
		if err != nil {
			return "", fmt.Errorf("read slot %s: %w", s.name, err)
		}
		if found {
			*s.dst = raw
		}
	}

	out, err := os.Create(filepath.Join(dir, "slots.json"))
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&a); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	if err := w.publishLatest(id); err != nil {
		return "", err
	}
	return id, nil
}

func (w *Writer) publishLatest(id string) error {
	m := Manifest{
		BackupID:             id,
		CreatedAtEpochSecond: time.Now().UTC().Unix(),
	}
	out, err := os.Create(filepath.Join(w.baseDir, "manifest.latest.json"))
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// ReadLatest returns the manifest of the newest archive.
func ReadLatest(baseDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "manifest.latest.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return m, nil
}

// Restore loads the named archive into the store, overwriting the slots the
// archive carries and leaving the rest untouched.
func Restore(baseDir, id string, st registry.Store) error {
	data, err := os.ReadFile(filepath.Join(baseDir, id, "slots.json"))
	if err != nil {
		return fmt.Errorf("read archive %s: %w", id, err)
	}
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("unmarshal archive %s: %w", id, err)
	}
	slots := []struct {
		name string
		raw  json.RawMessage
	}{
		{registry.SlotOrders, a.Orders},
		{registry.SlotHistory, a.History},
		{registry.SlotFiles, a.Processed},
	}
	for _, s := range slots {
		if s.raw == nil {
			continue
		}
		if err := st.Set(s.name, s.raw); err != nil {
			return fmt.Errorf("restore slot %s: %w", s.name, err)
		}
	}
	return nil
}

// RestoreLatest restores the archive the manifest points at.
func RestoreLatest(baseDir string, st registry.Store) (Manifest, error) {
	m, err := ReadLatest(baseDir)
	if err != nil {
		return Manifest{}, err
	}
	if err := Restore(baseDir, m.BackupID, st); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
