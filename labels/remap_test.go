package labels

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestRemap(t *testing.T) {
	mapped, err := CarlaToKitti.Remap([]uint32{1, 14, 12, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mapped, test.ShouldResemble, []uint16{40, 10, 30, 40})
}

func TestRemapUnknownID(t *testing.T) {
	mapped, err := CarlaToKitti.Remap([]uint32{1, 9000, 14})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "9000")
	test.That(t, err.Error(), test.ShouldContainSubstring, "no mapping")
	test.That(t, mapped, test.ShouldBeNil)
}

func TestRemapEmpty(t *testing.T) {
	mapped, err := CarlaToKitti.Remap(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mapped, test.ShouldResemble, []uint16{})
}

func TestNewTableFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remap.json")
	err := os.WriteFile(path, []byte(`{"1": 40, "14": 10}`), 0o644)
	test.That(t, err, test.ShouldBeNil)

	table, err := NewTableFromJSONFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, table, test.ShouldResemble, Table{1: 40, 14: 10})

	_, err = NewTableFromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
