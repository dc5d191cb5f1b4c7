package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// ParseTransport validates a transport name.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case TransportHTTP, TransportStdio:
		return t, nil
	case "":
		return TransportStdio, nil
	default:
		return "", fmt.Errorf("unknown MCP transport %q", s)
	}
}

// Runner coordinates MCP server startup.
type Runner struct {
	Service *Service
	Name    string
	Version string
	Log     *zap.Logger

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
	// HTTPMiddleware wraps the HTTP endpoint, typically to authenticate the
	// caller into the request context.
	HTTPMiddleware func(http.Handler) http.Handler
}

// Run starts the Model Context Protocol server using stdio transport.
func Run(ctx context.Context, api app.API) error {
	r := Runner{
		Service:   NewService(api),
		Transport: TransportStdio,
	}
	return r.Do(ctx)
}

// NewServer builds the MCP server with every tool and resource registered.
func NewServer(name, version string, svc *Service) *server.MCPServer {
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and write the weekly journal entries and reminders of a life grid of 90 years by 52 weeks."),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil || r.Service.API == nil {
		return errors.New("mcp runner requires a week store")
	}
	name := r.Name
	if name == "" {
		name = "lifedots"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	srv := NewServer(name, version, r.Service)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, log)
	case TransportStdio:
		log.Debug("mcp serving stdio")
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, log *zap.Logger) error {
	if (r.HTTPServerCert != "" && r.HTTPServerKey == "") || (r.HTTPServerCert == "" && r.HTTPServerKey != "") {
		return errors.New("both http tls cert and key must be provided")
	}

	handler := server.NewStreamableHTTPServer(srv)

	path := r.HTTPEndpointPath
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8081"
	}

	var h http.Handler = handler
	if r.HTTPMiddleware != nil {
		h = r.HTTPMiddleware(h)
	}

	mux := http.NewServeMux()
	mux.Handle(path, h)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	log.Info("mcp listening", zap.String("addr", ln.Addr().String()), zap.String("path", path))

	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	if r.HTTPServerCert != "" && r.HTTPServerKey != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
