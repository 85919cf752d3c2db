// Package store keeps the passwords typed in a manual session in a temporary line
// delimited file until they are checked. The file must never outlive the session, use With
// to get a store that is removed on every exit path.
package store

import (
	"bufio"
	"errors"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const filePattern = "user_input_pw-*.txt"

var (
	ErrNewline = errors.New("password must be a single line")
	ErrClosed  = errors.New("store is closed for writing")
)

type Store struct {
	file    *os.File
	writer  *bufio.Writer
	name    string
	count   int
	removed bool
}

// Create opens a new, empty store in dir. An empty dir means the working directory.
func Create(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}

	// CreateTemp already uses 0600
	file, err := os.CreateTemp(dir, filePattern)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating password store")
	}

	log.Debug().Msgf("password store %s created", file.Name())
	return &Store{
		file:   file,
		writer: bufio.NewWriter(file),
		name:   file.Name(),
	}, nil
}

// With creates a store in dir, hands it to fn and removes it afterwards, also when fn fails
// or panics.
func With(dir string, fn func(s *Store) error) (err error) {
	s, err := Create(dir)
	if err != nil {
		return err
	}

	defer func() {
		if rmErr := s.Remove(); rmErr != nil {
			log.Error().Err(rmErr).Msgf("error removing password store %s", s.Name())
			if err == nil {
				err = rmErr
			}
		}
	}()

	return fn(s)
}

func (s *Store) Name() string {
	return s.name
}

// Len is the number of passwords appended.
func (s *Store) Len() int {
	return s.count
}

func (s *Store) Append(password string) error {
	if s.file == nil {
		return ErrClosed
	}
	if strings.ContainsAny(password, "\r\n") {
		return ErrNewline
	}

	if _, err := s.writer.WriteString(password + "\n"); err != nil {
		return err
	}
	s.count++
	return nil
}

// Close flushes the appended passwords and ends the writing phase.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}

	file := s.file
	s.file = nil
	if err := s.writer.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Passwords closes the store for writing, reopens it and reads back every password in
// insertion order.
func (s *Store) Passwords() ([]string, error) {
	if err := s.Close(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.name)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reopening password store")
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing password store")
		}
	}(file)

	passwords := make([]string, 0, s.count)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		passwords = append(passwords, scanner.Text())
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return passwords, nil
}

// Remove closes and deletes the store. Calling it more than once is fine.
func (s *Store) Remove() error {
	if s.removed {
		return nil
	}

	closeErr := s.Close()
	if err := os.Remove(s.name); err != nil && !os.IsNotExist(err) {
		return err
	}

	s.removed = true
	log.Debug().Msgf("password store %s removed", s.name)
	return closeErr
}
