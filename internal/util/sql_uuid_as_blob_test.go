package util // nolint:testpackage

import (
	"bytes"
	"testing"
)

// The driver only accepts primitive values, returning a wrapper type from
// Value() blows up at bind time deep inside database/sql.
func TestNullUUIDAsBlobValueYieldsDriverValue(t *testing.T) {
	id := NewUUIDAsBlob()

	value, err := NewNullUUIDAsBlob(id).Value()
	if err != nil {
		t.Fatal(err)
	}

	slice, ok := value.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", value)
	}

	raw := [16]byte(id)
	if !bytes.Equal(slice, raw[:]) {
		t.Errorf("expected %v, got %v", raw[:], slice)
	}

	value, err = (NullUUIDAsBlob{}).Value()
	if err != nil {
		t.Fatal(err)
	}
	if value != nil {
		t.Errorf("a NULL UUID must bind as nil, got %T", value)
	}
}

func TestNullUUIDAsBlobScanRoundTrip(t *testing.T) {
	id := NewUUIDAsBlob()
	raw := [16]byte(id)

	var ns NullUUIDAsBlob
	if err := ns.Scan(raw[:]); err != nil {
		t.Fatal(err)
	}
	if !ns.Valid || ns.UUID != id {
		t.Errorf("expected valid %s, got %+v", id, ns)
	}

	if err := ns.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if ns.Valid {
		t.Error("scanning NULL must invalidate the wrapper")
	}
}
