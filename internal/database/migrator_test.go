package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql":   {Data: []byte("-- 2")},
		"001_init.sql":      {Data: []byte("-- 1")},
		"003_reset_all.sql": {Data: []byte("-- destructive")},
		"embed.go":          {Data: []byte("package migrations")},
		"archive/old.sql":   {Data: []byte("-- nested")},
		"004_seed_demo.sql": {Data: []byte("-- 4")},
	}

	got, err := PendingMigrations(fsys, map[string]bool{"002_indexes.sql": true})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"001_init.sql", "004_seed_demo.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pending = %v, want %v", got, want)
	}
}

func TestPendingMigrationsAllApplied(t *testing.T) {
	fsys := fstest.MapFS{"001_init.sql": {Data: []byte("-- 1")}}

	got, err := PendingMigrations(fsys, map[string]bool{"001_init.sql": true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected nothing pending, got %v", got)
	}
}
