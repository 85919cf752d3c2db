// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/likexian/selfca"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"net/http"
	"time"

	"github.com/alvinbaena/pwdcheck/internal/api"
	"github.com/alvinbaena/pwdcheck/internal/config"
	"github.com/alvinbaena/pwdcheck/internal/util"
	"github.com/alvinbaena/pwdcheck/pkg/hibp"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve an API that checks passwords and SHA1 hashes against the Pwned Passwords API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	serveCmd.Flags().BoolVar(&selfTLS, "self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	serveCmd.Flags().Uint16VarP(&port, "port", "p", 3100, "Port to be used by the server")
	serveCmd.Flags().Int64Var(&cacheSize, "cache-size", 64, "MiB of range responses kept in memory")
	serveCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 6*time.Hour, "How long a cached range response is served")

	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stat := hibp.NewStats()
	ranges, err := hibp.NewCachedRanges(newClient(cfg, stat), cacheSize*1024*1024, cacheTTL)
	if err != nil {
		return fmt.Errorf("error initializing range cache: %s", err)
	}
	defer ranges.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.SetLogger(logger.WithLogger(func(c *gin.Context, z zerolog.Logger) zerolog.Logger {
		return zerolog.New(gin.DefaultWriter).With().Timestamp().Logger()
	})))

	v1 := router.Group("/v1")

	pwned := v1.Group("/check")
	api.RegisterQueryApi(pwned, hibp.NewChecker(ranges, stat))

	tlsConfig, err := serverTLS()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:      fmt.Sprintf(":%d", port),
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	err = listenUntilDone(cmd.Context(), srv)
	stat.Done()
	return err
}

// serverTLS loads the certificate pair from --tls-cert and --tls-key, or generates one with
// --self-tls.
func serverTLS() (*tls.Config, error) {
	if tlsCert != "" && tlsKey != "" {
		pair, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
		if err != nil {
			return nil, fmt.Errorf("error loading TLS certificate: %s", err)
		}
		return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
	}

	if selfTLS {
		log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
		return selfSignedTLS(30 * 24 * time.Hour)
	}

	return nil, errors.New("server requires TLS configuration to start. " +
		"Please use either the --self-tls flag or set a certificate with the --tls-cert and --tls-key flags")
}

// selfSignedTLS is renewed on every start, so it only has to outlive one server run.
func selfSignedTLS(validity time.Duration) (*tls.Config, error) {
	certificate, key, err := selfca.GenerateCertificate(selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(validity),
	})
	if err != nil {
		return nil, fmt.Errorf("error generating auto self-signed certificate: %s", err)
	}

	pair, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	)
	if err != nil {
		return nil, fmt.Errorf("error using auto self-signed certificate: %s", err)
	}

	return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
}

// listenUntilDone serves srv.TLSConfig until ctx is cancelled, then drains in-flight
// requests for up to 5 seconds. A listener failure is returned right away.
func listenUntilDone(ctx context.Context, srv *http.Server) error {
	failed := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting TLS Server on address: %s", srv.Addr)
		if err := srv.ListenAndServeTLS("", ""); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("error starting server: %s", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server Shutdown.")
	}
	log.Info().Msg("server exiting...")
	return nil
}
