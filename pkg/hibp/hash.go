// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	// PrefixLen is the number of hash characters sent to the range API.
	PrefixLen = 5
	// SuffixLen is the number of hash characters kept locally and matched against the response.
	SuffixLen = sha1.Size*2 - PrefixLen
)

var sha1Hex = regexp.MustCompile("^[a-fA-F\\d]{40}$")

// Digest returns the uppercase hexadecimal SHA1 of the UTF-8 bytes of password.
func Digest(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Split hashes password and splits the digest for a k-anonymity lookup. Only the prefix
// should ever leave the machine.
func Split(password string) (prefix string, suffix string) {
	digest := Digest(password)
	return digest[:PrefixLen], digest[PrefixLen:]
}

// ParseHash splits an already computed SHA1 hex hash. Any case is accepted, the
// returned parts are uppercase like the API uses.
func ParseHash(hash string) (prefix string, suffix string, err error) {
	if !sha1Hex.MatchString(hash) {
		return "", "", ErrInvalidHash
	}

	// The hash must be uppercase
	hash = strings.ToUpper(hash)
	return hash[:PrefixLen], hash[PrefixLen:], nil
}
