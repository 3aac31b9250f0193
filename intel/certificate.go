package intel

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"url-vetting/lexical"
	"url-vetting/vetting"
)

// TLSCertificates reads the leaf certificate a host presents on its TLS
// port. The browsing-context identifier is the host (optionally host:port)
// or an absolute URL.
type TLSCertificates struct {
	Timeout time.Duration
	Port    string
}

func NewTLSCertificates(timeout time.Duration) *TLSCertificates {
	return &TLSCertificates{Timeout: timeout, Port: "443"}
}

// CertificateInfo implements vetting.CertificateProvider.
func (t *TLSCertificates) CertificateInfo(ctx context.Context, contextID string) (*vetting.CertificateInfo, error) {
	addr, serverName, err := t.target(contextID)
	if err != nil {
		return nil, err
	}

	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: t.Timeout},
		Config: &tls.Config{
			ServerName: serverName,
			// Validity is scored, not trust; self-signed leaves still count.
			InsecureSkipVerify: true,
		},
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tls dial %s: %w", addr, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("no peer certificate from %s", addr)
	}
	leaf := state.PeerCertificates[0]
	info := certificateInfo(leaf)
	log.Printf("[Certificate] %s: issuer=%q validity=%dd %s", addr, info.Issuer, info.ValidityDurationDays, tlsVersionName(state.Version))
	return info, nil
}

func (t *TLSCertificates) target(contextID string) (addr, serverName string, err error) {
	id := strings.TrimSpace(contextID)
	if u, parseErr := lexical.ParseAbsolute(id); parseErr == nil {
		id = u.Host
	}
	port := t.Port
	if port == "" {
		port = "443"
	}
	if h, p, splitErr := net.SplitHostPort(id); splitErr == nil {
		id, port = h, p
	}
	id = strings.Trim(id, "[]")
	if id == "" {
		return "", "", fmt.Errorf("empty certificate context")
	}
	return net.JoinHostPort(id, port), id, nil
}

func certificateInfo(c *x509.Certificate) *vetting.CertificateInfo {
	issuer := c.Issuer.CommonName
	if issuer == "" && len(c.Issuer.Organization) > 0 {
		issuer = c.Issuer.Organization[0]
	}
	return &vetting.CertificateInfo{
		Issuer:               issuer,
		ValidityDurationDays: int(c.NotAfter.Sub(c.NotBefore).Hours() / 24),
	}
}

func tlsVersionName(v uint16) string {
	switch v {
	case tls.VersionTLS13:
		return "TLS1.3"
	case tls.VersionTLS12:
		return "TLS1.2"
	default:
		return "weak"
	}
}
