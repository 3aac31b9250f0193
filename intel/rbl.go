package intel

import (
	"context"
	"log"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"url-vetting/lexical"
	"url-vetting/vetting"
)

// DomainRBLZones are the URI blocklists consulted by default. Both are
// strict lists: any 127.0.0.x answer above .1 is a listing.
var DomainRBLZones = []string{
	"multi.surbl.org",        // SURBL
	"ivmuri.invaluement.com", // invaluement ivmURI
}

// RBLListing records one zone that listed the domain.
type RBLListing struct {
	Zone     string   `json:"zone"`
	Query    string   `json:"query"`
	Response []string `json:"response"`
}

// RBL checks the registrable domain of a URL against DNS URI blocklists.
type RBL struct {
	Zones   []string
	Timeout time.Duration

	lookupHost func(ctx context.Context, host string) ([]string, error)
}

// NewRBL returns a checker that resolves through the DNS server at
// resolverAddr (host:port). An empty address uses the system resolver.
func NewRBL(resolverAddr string, zones ...string) *RBL {
	if len(zones) == 0 {
		zones = DomainRBLZones
	}
	resolver := net.DefaultResolver
	if resolverAddr != "" {
		resolver = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{Timeout: 2 * time.Second}
				return d.DialContext(ctx, "udp", resolverAddr)
			},
		}
	}
	return &RBL{
		Zones:      zones,
		Timeout:    3 * time.Second,
		lookupHost: resolver.LookupHost,
	}
}

// CheckReputation implements vetting.ReputationChecker.
func (r *RBL) CheckReputation(ctx context.Context, rawURL string) vetting.Reputation {
	host, ok := lexical.Hostname(rawURL)
	if !ok || net.ParseIP(strings.Trim(host, "[]")) != nil {
		return vetting.Reputation{}
	}
	domain := lexical.RegistrableDomain(host)

	listings := make([]*RBLListing, len(r.Zones))
	g, gctx := errgroup.WithContext(ctx)
	for i, zone := range r.Zones {
		g.Go(func() error {
			listings[i] = r.query(gctx, domain, zone)
			return nil
		})
	}
	_ = g.Wait()

	var hits []RBLListing
	var zones []string
	for _, l := range listings {
		if l != nil {
			hits = append(hits, *l)
			zones = append(zones, l.Zone)
		}
	}
	if len(hits) == 0 {
		return vetting.Reputation{}
	}
	return vetting.Reputation{
		Malicious: true,
		Source:    strings.Join(zones, ", "),
		Details:   hits,
	}
}

func (r *RBL) query(ctx context.Context, domain, zone string) *RBLListing {
	q := domain + "." + zone
	qctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	addrs, err := r.lookupHost(qctx, q)
	if err != nil || len(addrs) == 0 {
		// NXDOMAIN is the normal "not listed" answer.
		return nil
	}

	listed := false
	for _, addr := range addrs {
		switch {
		case addr == "127.0.0.1":
			log.Printf("[RBL] %s refused the query (response 127.0.0.1), resolver may be blocked", zone)
		case strings.HasPrefix(addr, "127.0.0."):
			listed = true
		}
	}
	if !listed {
		log.Printf("[RBL] Ignoring non-standard response from %s: %v", zone, addrs)
		return nil
	}
	log.Printf("[RBL] ⚠️ Domain LISTED on %s: %s (response: %v)", zone, q, addrs)
	return &RBLListing{Zone: zone, Query: q, Response: addrs}
}
