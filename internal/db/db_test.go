package db

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"climate-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "hawaii.db")

	tests := []struct {
		name string
		cfg  config.Config
		mode Mode
		want []string
		deny []string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{DSN: "file:custom.db?cache=shared", Path: path},
			mode: ReadOnly,
			want: []string{"file:custom.db?cache=shared"},
			deny: []string{"mode=ro"},
		},
		{
			name: "read only plain path",
			cfg:  config.Config{Path: path},
			mode: ReadOnly,
			want: []string{"file:" + path + "?", "mode=ro", "_query_only=true"},
			deny: []string{"_journal_mode=WAL"},
		},
		{
			name: "read write plain path",
			cfg:  config.Config{Path: path},
			mode: ReadWrite,
			want: []string{"file:" + path + "?", "_foreign_keys=on", "_journal_mode=WAL"},
			deny: []string{"mode=ro"},
		},
		{
			name: "file uri with query keeps params",
			cfg:  config.Config{Path: "file:" + path + "?cache=shared"},
			mode: ReadOnly,
			want: []string{"?cache=shared&mode=ro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg, tt.mode)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("dsn %q missing %q", got, w)
				}
			}
			for _, d := range tt.deny {
				if strings.Contains(got, d) {
					t.Errorf("dsn %q must not contain %q", got, d)
				}
			}
		})
	}
}

func TestOpen_ReadOnlyMissingFileFails(t *testing.T) {
	cfg := config.Config{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "missing.db"),
	}
	conn, err := Open(cfg, ReadOnly, slog.Default())
	if err == nil {
		_ = Close(conn)
		t.Fatal("Open(ReadOnly) on a missing file succeeded; want error")
	}
}

func TestOpen_ReadWriteThenReadOnly(t *testing.T) {
	cfg := config.Config{
		Driver:       "sqlite3",
		Path:         filepath.Join(t.TempDir(), "data", "hawaii.db"),
		MaxOpenConns: 1,
	}

	rw, err := Open(cfg, ReadWrite, slog.Default())
	if err != nil {
		t.Fatalf("Open(ReadWrite): %v", err)
	}
	if _, err := rw.Exec(`CREATE TABLE stations (id INTEGER PRIMARY KEY, station TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Close(rw); err != nil {
		t.Fatalf("close: %v", err)
	}

	cfg.LogSQL = true
	ro, err := Open(cfg, ReadOnly, slog.Default())
	if err != nil {
		t.Fatalf("Open(ReadOnly): %v", err)
	}
	defer func() { _ = Close(ro) }()

	var n int
	if err := ro.QueryRow(`SELECT COUNT(*) FROM stations`).Scan(&n); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := ro.Exec(`INSERT INTO stations (id, station) VALUES (1, 'USC00519397')`); err == nil {
		t.Fatal("insert through read-only handle succeeded; want error")
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}
