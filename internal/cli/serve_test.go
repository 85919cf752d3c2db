package cli

import (
	"context"
	"crypto/x509"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestSelfSignedTLS(t *testing.T) {
	cfg, err := selfSignedTLS(time.Hour)
	if err != nil {
		t.Fatalf("Should not fail generating a certificate: %s", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("Certificates: %d, want: 1", len(cfg.Certificates))
	}

	leaf, err := x509.ParseCertificate(cfg.Certificates[0].Certificate[0])
	if err != nil {
		t.Fatalf("Should not fail parsing the certificate: %s", err)
	}
	if leaf.NotAfter.After(time.Now().Add(time.Hour + time.Minute)) {
		t.Errorf("Certificate valid until %s, want about an hour", leaf.NotAfter)
	}
}

func TestServerTLS_Required(t *testing.T) {
	prevCert, prevKey, prevSelf := tlsCert, tlsKey, selfTLS
	t.Cleanup(func() { tlsCert, tlsKey, selfTLS = prevCert, prevKey, prevSelf })

	tlsCert, tlsKey, selfTLS = "", "", false
	if _, err := serverTLS(); err == nil {
		t.Errorf("Serving without a certificate should fail")
	}

	tlsCert, tlsKey = "missing.crt", "missing.key"
	if _, err := serverTLS(); err == nil {
		t.Errorf("Missing certificate files should fail")
	}
}

func newTestServer(t *testing.T, addr string) *http.Server {
	cfg, err := selfSignedTLS(time.Hour)
	if err != nil {
		t.Fatalf("Should not fail generating a certificate: %s", err)
	}
	return &http.Server{Addr: addr, Handler: http.NotFoundHandler(), TLSConfig: cfg}
}

func TestListenUntilDone_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if err := listenUntilDone(ctx, newTestServer(t, "127.0.0.1:0")); err != nil {
		t.Errorf("Should not fail shutting down: %s", err)
	}
}

func TestListenUntilDone_ListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Should not fail listening: %s", err)
	}
	t.Cleanup(func() { _ = busy.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = listenUntilDone(ctx, newTestServer(t, busy.Addr().String())); err == nil {
		t.Errorf("A busy address should fail")
	}
}
