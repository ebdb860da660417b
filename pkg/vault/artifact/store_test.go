package artifact

import (
	"bytes"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewWithPath(t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath: %v", err)
	}
	return s
}

func TestWriteReadDelete(t *testing.T) {
	s := newTestStore(t)

	data := []byte("sealed bytes")
	if err := s.Write("ab/cd/blob-1", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read("ab/cd/blob-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read = %q, want %q", got, data)
	}

	if err := s.Delete("ab/cd/blob-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("ab/cd/blob-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read after delete = %v, want ErrNotFound", err)
	}
}

func TestReadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNoError(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("nope"); err != nil {
		t.Errorf("Delete of missing blob = %v, want nil", err)
	}
}

func TestOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.Write("blob", []byte("first"))
	if err := s.Write("blob", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ := s.Read("blob")
	if !bytes.Equal(got, []byte("second")) {
		t.Errorf("Read = %q, want %q", got, "second")
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write("../escape", []byte("x")); err == nil {
		t.Error("Write accepted a traversal key")
	}
	if err := s.Write("", []byte("x")); err == nil {
		t.Error("Write accepted an empty key")
	}
}

func TestClosedStore(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	if err := s.Write("blob", []byte("x")); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Write on closed store = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Read("blob"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Read on closed store = %v, want ErrStoreClosed", err)
	}
}
