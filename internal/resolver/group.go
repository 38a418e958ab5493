package resolver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

type groupResolver struct {
	res        []IDNSResolver
	concurrent int
}

func (p *groupResolver) String() string {
	names := make([]string, 0, len(p.res))
	for _, r := range p.res {
		names = append(names, r.String())
	}
	return fmt.Sprintf("group(%s)", strings.Join(names, ","))
}

// Query sends req to concurrent members starting at a random offset and
// returns the first successful answer.
func (p *groupResolver) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	if len(p.res) == 0 {
		return nil, fmt.Errorf("empty resolver group")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var eg errgroup.Group
	eg.SetLimit(p.concurrent)
	var result atomic.Value
	pos := rand.IntN(len(p.res))
	for i := 0; i < p.concurrent; i++ {
		res := p.res[(i+pos)%len(p.res)]
		eg.Go(func() error {
			rs, err := res.Query(ctx, req.Copy())
			if err != nil {
				return err
			}
			result.Store(rs)
			cancel()
			return nil
		})
	}
	err := eg.Wait()
	v, ok := result.Load().(*dns.Msg)
	if ok {
		return v, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no err return and no dns record found?")
}

// NewGroupResolver spreads queries over res. A concurrent value of 1 picks a
// single random member per query.
func NewGroupResolver(res []IDNSResolver, concurrent int) IDNSResolver {
	if concurrent <= 0 {
		concurrent = 1
	}
	if concurrent > len(res) {
		concurrent = len(res)
	}
	return &groupResolver{res: res, concurrent: concurrent}
}
