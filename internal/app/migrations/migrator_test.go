package migrations

import (
	"testing"
	"testing/fstest"
)

func TestVersion(t *testing.T) {
	if v := Version("001_init.sql"); v != "001" {
		t.Errorf("Version = %q", v)
	}
	if v := Version("sql/010_add_index.sql"); v != "010" {
		t.Errorf("Version = %q", v)
	}
}

func TestPendingOrdersSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":    {Data: []byte("SELECT 2;")},
		"001_a.sql":    {Data: []byte("SELECT 1;")},
		"README.md":    {Data: []byte("docs")},
		"010_c.sql":    {Data: []byte("SELECT 10;")},
		"nested/x.sql": {Data: []byte("SELECT 0;")},
	}

	files, err := Pending(fsys)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_a.sql", "002_b.sql", "010_c.sql"}
	if len(files) != len(want) {
		t.Fatalf("Pending = %v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Pending[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestEmbeddedSchemaPresent(t *testing.T) {
	files, err := Pending(Files())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 || files[0] != "001_init.sql" {
		t.Fatalf("embedded migrations = %v", files)
	}
}
