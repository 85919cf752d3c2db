package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Create(dir)
	if err != nil {
		t.Fatalf("Should not fail creating a store: %s", err)
	}
	t.Cleanup(func() {
		if err := s.Remove(); err != nil {
			t.Fatalf("Should not fail removing the store: %s", err)
		}
	})

	want := []string{"password", "test", "123", "", "with spaces ", "ñandú:colon"}
	for _, pwd := range want {
		if err = s.Append(pwd); err != nil {
			t.Fatalf("Should not fail appending: %s", err)
		}
	}

	got, err := s.Passwords()
	if err != nil {
		t.Fatalf("Should not fail reading back: %s", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Read %d passwords, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Password %d: %q, want: %q", i, got[i], want[i])
		}
	}

	if err = s.Append("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Append after reading should fail with ErrClosed, got: %v", err)
	}
}

func TestStore_Permissions(t *testing.T) {
	s, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Should not fail creating a store: %s", err)
	}
	t.Cleanup(func() { _ = s.Remove() })

	stat, err := os.Stat(s.Name())
	if err != nil {
		t.Fatalf("Should not fail stat'ing the store: %s", err)
	}
	if perm := stat.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("Store should only be readable by the owner, mode %v", perm)
	}
}

func TestStore_RejectsNewlines(t *testing.T) {
	s, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Should not fail creating a store: %s", err)
	}
	t.Cleanup(func() { _ = s.Remove() })

	if err = s.Append("two\nlines"); !errors.Is(err, ErrNewline) {
		t.Errorf("Should fail with ErrNewline, got: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Rejected password should not be stored")
	}
}

func TestWith_RemovesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	var name string
	err := With(dir, func(s *Store) error {
		name = s.Name()
		for i := 0; i < 5; i++ {
			if err := s.Append(fmt.Sprintf("pwd-%d", i)); err != nil {
				return err
			}
		}
		passwords, err := s.Passwords()
		if err != nil {
			return err
		}
		if len(passwords) != 5 {
			return fmt.Errorf("read %d passwords", len(passwords))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	assertRemoved(t, dir, name)
}

func TestWith_RemovesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("lookup failed")

	var name string
	err := With(dir, func(s *Store) error {
		name = s.Name()
		_ = s.Append("password")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Error should be returned untouched, got: %v", err)
	}

	assertRemoved(t, dir, name)
}

func TestWith_RemovesOnPanic(t *testing.T) {
	dir := t.TempDir()

	var name string
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Panic should propagate")
			}
		}()

		_ = With(dir, func(s *Store) error {
			name = s.Name()
			_ = s.Append("password")
			panic("crash")
		})
	}()

	assertRemoved(t, dir, name)
}

func assertRemoved(t *testing.T, dir string, name string) {
	t.Helper()
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("Store %s should have been removed", name)
	}

	matches, err := filepath.Glob(filepath.Join(dir, filePattern))
	if err != nil {
		t.Fatalf("Should not fail globbing: %s", err)
	}
	if len(matches) != 0 {
		t.Errorf("No store files should be left, found %v", matches)
	}
}
