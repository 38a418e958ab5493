package resolver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/dnsbeacon/internal/resolver/model"
	"go.uber.org/zap"
)

func init() {
	Register("tcp", basicResolverFactory)
	Register("udp", basicResolverFactory)
	Register("dot", basicResolverFactory)
}

func basicResolverFactory(schema string, host string, params *model.Params) (IDNSResolver, error) {
	timeout := time.Duration(params.CustomParams.Timeout) * time.Millisecond
	if schema == "udp" || schema == "tcp" {
		addr, err := ensurePort(host, "53")
		if err != nil {
			return nil, err
		}
		return newClassicResolver(schema, addr, timeout), nil
	} else if schema == "dot" {
		addr, err := ensurePort(host, "853")
		if err != nil {
			return nil, err
		}
		hostname, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		client := &dns.Client{
			Net:     "tcp-tls",
			Timeout: timeout,
			TLSConfig: &tls.Config{
				ServerName: hostname,
				MinVersion: tls.VersionTLS12,
			},
		}
		return &classicResolver{addr: addr, client: client}, nil
	}
	return nil, fmt.Errorf("unsupported dns type:%s", schema)
}

func newClassicResolver(network string, addr string, timeout time.Duration) *classicResolver {
	return &classicResolver{
		addr:   addr,
		client: &dns.Client{Net: network, Timeout: timeout},
	}
}

type classicResolver struct {
	addr   string
	client *dns.Client
}

func (r *classicResolver) String() string {
	return fmt.Sprintf("%s/%s", r.client.Net, r.addr)
}

func (r *classicResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("resolver", r.String()),
		zap.String("server_addr", r.addr),
	)
	logger.Debug("classic resolver start query")
	resp, rtt, err := r.client.ExchangeContext(ctx, req, r.addr)
	if err != nil {
		logger.Debug("classic resolver query failed", zap.Error(err))
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from %s", r.addr)
	}
	logger.Debug("classic resolver query success", zap.Int("answer_count", len(resp.Answer)), zap.Duration("rtt", rtt))
	return resp, nil
}

func ensurePort(host string, defaultPort string) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", fmt.Errorf("empty resolver host")
	}
	if defaultPort == "" {
		return host, nil
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}
	cleanHost := host
	if strings.HasPrefix(cleanHost, "[") && strings.HasSuffix(cleanHost, "]") {
		cleanHost = strings.TrimPrefix(cleanHost, "[")
		cleanHost = strings.TrimSuffix(cleanHost, "]")
	}
	return net.JoinHostPort(cleanHost, defaultPort), nil
}
