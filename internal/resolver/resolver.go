package resolver

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/miekg/dns"
	"github.com/xxxsen/dnsbeacon/internal/resolver/model"
)

type Factory func(schema string, host string, params *model.Params) (IDNSResolver, error)

var m = make(map[string]Factory)

func MakeResolvers(links []string) ([]IDNSResolver, error) {
	rs := make([]IDNSResolver, 0, len(links))
	for _, item := range links {
		r, err := MakeResolver(item)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// MakeResolver builds a resolver from a link such as udp://1.1.1.1:53?timeout=2000.
// A bare ip or ip:port is treated as a udp link.
func MakeResolver(link string) (IDNSResolver, error) {
	link, err := NormalizeLink(link)
	if err != nil {
		return nil, err
	}
	uri, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	cr, ok := m[uri.Scheme]
	if !ok {
		return nil, fmt.Errorf("no resolver type found, type:%s", uri.Scheme)
	}
	urlinfo := &model.Params{
		URL: uri,
	}
	if err := decodeParams(&urlinfo.CustomParams, uri.Query()); err != nil {
		return nil, err
	}
	return cr(uri.Scheme, uri.Host, urlinfo)
}

// NormalizeLink turns a plain resolver address into a udp link and leaves links untouched.
func NormalizeLink(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("empty resolver address")
	}
	if strings.Contains(addr, "://") {
		return addr, nil
	}
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		if ip.To4() == nil {
			return "udp://[" + ip.String() + "]", nil
		}
		return "udp://" + ip.String(), nil
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil || net.ParseIP(host) == nil {
		return "", fmt.Errorf("invalid resolver address:%s, want ip, ip:port or link", addr)
	}
	return "udp://" + net.JoinHostPort(host, port), nil
}

func decodeParams(out interface{}, in map[string][]string) error {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	if err := d.Decode(out, in); err != nil {
		return err
	}
	return nil
}

func Register(schema string, fac Factory) {
	m[schema] = fac
}

// IDNSResolver represents an upstream resolver.
type IDNSResolver interface {
	String() string
	Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error)
}

// NewFromLinks builds the resolver used for every query: the system resolver
// read from resolvConf when links is empty, the single resolver for one link,
// otherwise a group that sends each query to one randomly picked member.
func NewFromLinks(links []string, resolvConf string) (IDNSResolver, error) {
	if len(links) == 0 {
		return NewSystemResolver(resolvConf)
	}
	rs, err := MakeResolvers(links)
	if err != nil {
		return nil, err
	}
	if len(rs) == 1 {
		return rs[0], nil
	}
	return NewGroupResolver(rs, 1), nil
}
