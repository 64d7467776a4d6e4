// Package dnsinfo answers the A and NS questions used for per-site details.
package dnsinfo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var defaultServers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// Records is the live DNS view of one domain.
type Records struct {
	IPs         []string
	Nameservers []string
}

// Resolver queries a fixed list of recursive servers, first answer wins.
type Resolver struct {
	servers []string
	client  *dns.Client
}

// NewResolver builds a resolver; with no servers the public defaults are used.
func NewResolver(timeout time.Duration, servers ...string) *Resolver {
	if len(servers) == 0 {
		servers = defaultServers
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		servers: servers,
		client:  &dns.Client{Timeout: timeout},
	}
}

// Lookup resolves the A and NS records of domain.
func (r *Resolver) Lookup(ctx context.Context, domain string) (Records, error) {
	var out Records
	a, errA := r.query(ctx, domain, dns.TypeA)
	for _, rr := range a {
		if rec, ok := rr.(*dns.A); ok {
			out.IPs = append(out.IPs, rec.A.String())
		}
	}
	ns, errNS := r.query(ctx, domain, dns.TypeNS)
	for _, rr := range ns {
		if rec, ok := rr.(*dns.NS); ok {
			out.Nameservers = append(out.Nameservers, strings.TrimSuffix(strings.ToLower(rec.Ns), "."))
		}
	}
	sort.Strings(out.IPs)
	sort.Strings(out.Nameservers)
	if errA != nil && errNS != nil {
		return out, errors.Join(errA, errNS)
	}
	return out, nil
}

func (r *Resolver) query(ctx context.Context, domain string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("%s %s: %s", dns.TypeToString[qtype], domain, dns.RcodeToString[resp.Rcode])
			continue
		}
		return resp.Answer, nil
	}
	return nil, lastErr
}
