package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/dnsbeacon/internal/resolver"
	"go.uber.org/zap"
)

// Prober issues a single query for a label under a fixed domain.
type Prober struct {
	domain  string
	qtype   uint16
	r       resolver.IDNSResolver
	timeout time.Duration
	now     func() time.Time
}

func New(domain string, qtype uint16, r resolver.IDNSResolver, timeout time.Duration) *Prober {
	return &Prober{
		domain:  strings.TrimSuffix(domain, "."),
		qtype:   qtype,
		r:       r,
		timeout: timeout,
		now:     time.Now,
	}
}

// FQDN joins label and domain as <label>.<domain> without a trailing dot.
func FQDN(label string, domain string) string {
	return strings.TrimSuffix(label+"."+domain, ".")
}

// Probe queries <label>.<domain> once and classifies the outcome. Failures are
// reported through the record status, never retried.
func (p *Prober) Probe(ctx context.Context, label string) *Record {
	name := FQDN(label, p.domain)
	rec := &Record{
		Time:   p.now().UTC(),
		Label:  label,
		Name:   name,
		QType:  dns.TypeToString[p.qtype],
		Status: StatusError,
	}

	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), p.qtype)

	qctx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	resp, err := p.r.Query(qctx, req)
	if err != nil {
		rec.Err = err
		rec.Status = classifyError(err)
		logutil.GetLogger(ctx).Debug("beacon query failed", zap.String("name", name), zap.String("status", string(rec.Status)), zap.Error(err))
		return rec
	}
	rec.Status = classifyResponse(resp)
	if resp.Rcode == dns.RcodeSuccess {
		rec.Answers = len(resp.Answer)
		rec.RData = summarize(resp.Answer)
	}
	return rec
}

func classifyResponse(resp *dns.Msg) Status {
	switch resp.Rcode {
	case dns.RcodeSuccess:
		if len(resp.Answer) == 0 {
			return StatusNoAnswer
		}
		return StatusNoError
	case dns.RcodeNameError:
		return StatusNXDomain
	}
	if s, ok := dns.RcodeToString[resp.Rcode]; ok {
		return Status(s)
	}
	return StatusError
}

func classifyError(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusTimeout
	}
	return StatusError
}

func summarize(rrs []dns.RR) []string {
	out := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		// strip the header, keep the rdata text
		full := rr.String()
		hdr := rr.Header().String()
		out = append(out, strings.TrimSpace(strings.TrimPrefix(full, hdr)))
	}
	return out
}
