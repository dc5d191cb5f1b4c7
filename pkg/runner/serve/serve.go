// Package serve runs the HTTP API, optionally next to an MCP endpoint.
package serve

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/lifedots/pkg/api"
	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/mcp"
)

// Serve runs the listeners until ctx is cancelled or one of them fails.
type Serve struct {
	API       app.API
	Addr      string
	Secret    string
	Location  *time.Location
	WeekStart time.Weekday
	Log       *zap.Logger

	// MCPAddr enables the MCP streamable HTTP endpoint when set.
	MCPAddr string
	MCPPath string
	Version string

	OnListen func(name string, addr net.Addr)
}

// Do starts every configured listener.
func (s *Serve) Do(ctx context.Context) error {
	if s.API == nil {
		return errors.New("serve: no week store configured")
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := api.New(api.Options{
		API:       s.API,
		Secret:    s.Secret,
		Location:  s.Location,
		WeekStart: s.WeekStart,
		Log:       log.Named("api"),
	})
	g.Go(func() error {
		return srv.Serve(ctx, s.Addr, s.listening("api"))
	})

	if s.MCPAddr != "" {
		svc := mcp.NewService(s.API)
		svc.Location = s.Location
		svc.WeekStart = s.WeekStart
		r := mcp.Runner{
			Service:          svc,
			Version:          s.Version,
			Log:              log.Named("mcp"),
			Transport:        mcp.TransportHTTP,
			HTTPListenAddr:   s.MCPAddr,
			HTTPEndpointPath: s.MCPPath,
			OnHTTPListening:  s.listening("mcp"),
			HTTPMiddleware:   api.Authenticate(srv.Tokens(), log.Named("mcp")),
		}
		g.Go(func() error {
			return r.Do(ctx)
		})
	}

	return g.Wait()
}

func (s *Serve) listening(name string) func(net.Addr) {
	if s.OnListen == nil {
		return nil
	}
	return func(a net.Addr) { s.OnListen(name, a) }
}
