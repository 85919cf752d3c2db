// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Result of checking one password. A zero Count means the suffix was not in the range.
type Result struct {
	Password string
	Count    uint64
}

func (r Result) Pwned() bool {
	return r.Count > 0
}

// Checker runs the k-anonymity lookup: hash, query the prefix range, match the suffix.
type Checker struct {
	ranges RangeFetcher
	stat   *Stats
}

func NewChecker(ranges RangeFetcher, stat *Stats) *Checker {
	return &Checker{ranges: ranges, stat: stat}
}

func (c *Checker) Check(ctx context.Context, password string) (Result, error) {
	prefix, suffix := Split(password)
	count, err := c.lookup(ctx, prefix, suffix)
	if err != nil {
		return Result{}, err
	}

	r := Result{Password: password, Count: count}
	if c.stat != nil {
		c.stat.PasswordChecked(r)
	}
	return r, nil
}

// CheckHash is Check for a password that is already a SHA1 hex hash. The returned Result
// carries the hash as its Password.
func (c *Checker) CheckHash(ctx context.Context, hash string) (Result, error) {
	prefix, suffix, err := ParseHash(hash)
	if err != nil {
		return Result{}, err
	}

	count, err := c.lookup(ctx, prefix, suffix)
	if err != nil {
		return Result{}, err
	}

	r := Result{Password: hash, Count: count}
	if c.stat != nil {
		c.stat.PasswordChecked(r)
	}
	return r, nil
}

func (c *Checker) lookup(ctx context.Context, prefix string, suffix string) (uint64, error) {
	body, err := c.ranges.Range(ctx, prefix)
	if err != nil {
		return 0, err
	}

	count, err := Count(body, suffix)
	if err != nil {
		return 0, err
	}

	log.Debug().Msgf("prefix %s: %d occurrences", prefix, count)
	return count, nil
}
