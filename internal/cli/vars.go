// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import "time"

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// check, query
	strength bool
	// check
	mode string
	// check
	parallel int
	// check
	speechCmd string
	// check
	storeDir string
	// query
	interactive bool
	// query
	hashed bool
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
	// serve
	cacheSize int64
	// serve
	cacheTTL time.Duration
)
