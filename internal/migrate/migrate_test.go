package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openMemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func TestRun_AppliesEmbeddedSchema(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	n, err := Run(ctx, db, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Fatalf("Run applied %d migrations; want 1", n)
	}

	for _, table := range []string{"stations", "measurements", tableName} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	n, err = Run(ctx, db, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Fatalf("second Run applied %d migrations; want 0", n)
	}
}

func TestRun_SchemaConstraints(t *testing.T) {
	db := openMemDB(t)
	if _, err := Run(context.Background(), db, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO stations (station, name, latitude, longitude, elevation)
		VALUES ('USC00519397', 'WAIKIKI 717.2, HI US', 21.2716, -157.8168, 3.0)`); err != nil {
		t.Fatalf("insert station: %v", err)
	}

	tests := []struct {
		name    string
		stmt    string
		wantErr bool
	}{
		{name: "valid row", stmt: `INSERT INTO measurements (station, date, prcp, tobs) VALUES ('USC00519397', '2010-01-01', 0.08, 65)`},
		{name: "null prcp", stmt: `INSERT INTO measurements (station, date, prcp, tobs) VALUES ('USC00519397', '2010-01-02', NULL, 63)`},
		{name: "duplicate station date", stmt: `INSERT INTO measurements (station, date, prcp, tobs) VALUES ('USC00519397', '2010-01-01', 0, 70)`, wantErr: true},
		{name: "negative prcp", stmt: `INSERT INTO measurements (station, date, prcp, tobs) VALUES ('USC00519397', '2010-01-03', -1, 70)`, wantErr: true},
		{name: "non iso date", stmt: `INSERT INTO measurements (station, date, prcp, tobs) VALUES ('USC00519397', '2010/01/04', 0, 70)`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.stmt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exec err = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_OrdersAndSkipsFiles(t *testing.T) {
	db := openMemDB(t)
	fsys := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte(`INSERT INTO t (v) VALUES ('second');`)},
		"sql/0001_first.sql":  {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"sql/README.md":       {Data: []byte(`not a migration`)},
		"sql/nested/0003.sql": {Data: []byte(`garbage`)},
	}

	n, err := run(context.Background(), db, fsys, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 {
		t.Fatalf("run applied %d; want 2", n)
	}
	var v string
	if err := db.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil || v != "second" {
		t.Fatalf("SELECT v = %q, %v; want second", v, err)
	}
}

func TestRun_FailedMigrationRollsBack(t *testing.T) {
	db := openMemDB(t)
	fsys := fstest.MapFS{
		"sql/0001_ok.sql":  {Data: []byte(`CREATE TABLE ok (v TEXT);`)},
		"sql/0002_bad.sql": {Data: []byte(`CREATE TABLE bad (v TEXT); SELEC nonsense;`)},
	}

	n, err := run(context.Background(), db, fsys, nil)
	if err == nil {
		t.Fatal("run succeeded; want error from bad migration")
	}
	if n != 1 {
		t.Fatalf("run applied %d before failing; want 1", n)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + tableName + ` WHERE version = '0002'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("failed migration was recorded as applied")
	}
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE name = 'bad'`).Scan(new(string)); err != sql.ErrNoRows {
		t.Fatalf("table from failed migration survived rollback: %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_schema.sql", wantVersion: "0001", wantName: "schema", wantOK: true},
		{in: "0010_add_index.sql", wantVersion: "0010", wantName: "add_index", wantOK: true},
		{in: "1_short.sql", wantOK: false},
		{in: "0001_schema.txt", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
				t.Fatalf("parseMigrationFilename(%q) = %q, %q, %v", tt.in, v, n, ok)
			}
		})
	}
}
