package postgres

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"github.com/iho/masjid-console/migrations"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("expected paired migrations, got %d up and %d down", ups, downs)
	}
}

func TestRunMigrationsRejectsBadURL(t *testing.T) {
	src := fstest.MapFS{
		"000001_init.up.sql":   {Data: []byte("SELECT 1;")},
		"000001_init.down.sql": {Data: []byte("SELECT 1;")},
	}

	if err := RunMigrations("unknown://nowhere", src, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unsupported database URL")
	}
}
