package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const DefaultResolvConf = "/etc/resolv.conf"

// systemResolver asks the nameservers from resolv.conf in order, the same way
// a libc stub resolver does.
type systemResolver struct {
	servers []IDNSResolver
}

// NewSystemResolver builds a resolver from the nameservers listed in path.
func NewSystemResolver(path string) (IDNSResolver, error) {
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolv conf failed, path:%s, err:%w", path, err)
	}
	if len(cc.Servers) == 0 {
		return nil, fmt.Errorf("no nameserver found in %s", path)
	}
	timeout := time.Duration(cc.Timeout) * time.Second
	servers := make([]IDNSResolver, 0, len(cc.Servers))
	for _, s := range cc.Servers {
		servers = append(servers, newClassicResolver("udp", net.JoinHostPort(s, cc.Port), timeout))
	}
	return &systemResolver{servers: servers}, nil
}

func (s *systemResolver) String() string {
	names := make([]string, 0, len(s.servers))
	for _, r := range s.servers {
		names = append(names, r.String())
	}
	return fmt.Sprintf("system(%s)", strings.Join(names, ","))
}

func (s *systemResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	var lastErr error
	for _, r := range s.servers {
		resp, err := r.Query(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logutil.GetLogger(ctx).Debug("system nameserver failed, try next", zap.String("server", r.String()), zap.Error(err))
	}
	return nil, lastErr
}
