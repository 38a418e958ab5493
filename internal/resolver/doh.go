package resolver

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/xxxsen/dnsbeacon/internal/resolver/model"
)

const dnsMessageContentType = "application/dns-message"

func init() {
	Register("https", dohResolverFactory)
}

func dohResolverFactory(schema string, host string, params *model.Params) (IDNSResolver, error) {
	path := params.URL.EscapedPath()
	if path == "" {
		path = "/dns-query"
	}
	endpoint := fmt.Sprintf("%s://%s%s", schema, host, path)
	return newDoHResolver(endpoint, params.URL.Hostname(), time.Duration(params.CustomParams.Timeout)*time.Millisecond), nil
}

func newDoHResolver(endpoint string, serverName string, timeout time.Duration) IDNSResolver {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     2,
		MaxIdleConns:        2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		DisableCompression:  true,
		TLSClientConfig:     &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12},
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	client := &http.Client{Timeout: timeout, Transport: transport}
	return &dohResolver{endpoint: endpoint, client: client}
}

type dohResolver struct {
	endpoint string
	client   *http.Client
}

func (r *dohResolver) String() string {
	return "doh:" + r.endpoint
}

func (r *dohResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	payload, err := req.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack dns request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create doh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", dnsMessageContentType)
	httpReq.Header.Set("Accept", dnsMessageContentType)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("doh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("doh %s returned %d: %s", r.endpoint, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dns.MaxMsgSize))
	if err != nil {
		return nil, fmt.Errorf("read doh response: %w", err)
	}

	message := &dns.Msg{}
	if err := message.Unpack(body); err != nil {
		return nil, fmt.Errorf("decode doh response: %w", err)
	}
	return message, nil
}
