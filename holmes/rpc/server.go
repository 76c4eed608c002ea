package rpc

import (
	"context"
	"log"
	"net"
	"net/rpc"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/analyzer"
	"github.com/maurer/holmes/holmes/engine"
)

// Service is the net/rpc-exported wrapper around an Engine. Method names
// and signatures follow net/rpc's convention: exported, two arguments
// (args value, reply pointer), returning error.
type Service struct {
	engine *engine.Engine
}

// Server owns a listener and the net/rpc dispatcher serving it.
type Server struct {
	ln  net.Listener
	svc *Service
}

// Serve starts accepting connections on addr (":0" picks a free port) and
// dispatches the four spec §6 methods against e. It returns once the
// listener is open; Accept runs in a background goroutine until Close.
func Serve(addr string, e *engine.Engine) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := rpc.NewServer()
	svc := &Service{engine: e}
	if err := srv.RegisterName("Holmes", svc); err != nil {
		ln.Close()
		return nil, err
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return // listener closed
			}
			go srv.ServeConn(conn)
		}
	}()
	return &Server{ln: ln, svc: svc}, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops accepting new connections. Connections already serving an
// Analyzer call that is blocked forever (see Service.Analyzer) leak their
// goroutine until the process exits, matching the spec's "hangs forever"
// contract — there is no cancellation signal for a standing analyzer.
func (s *Server) Close() error { return s.ln.Close() }

func (s *Service) RegisterType(args RegisterTypeArgs, reply *RegisterTypeReply) error {
	reply.OK = s.engine.RegisterType(args.Name, args.ArgTypes)
	return nil
}

func (s *Service) Set(args SetArgs, reply *SetReply) error {
	return s.engine.Set(context.Background(), args.Facts)
}

func (s *Service) Derive(args DeriveArgs, reply *DeriveReply) error {
	ctxs, err := s.engine.Derive(args.Premises)
	if err != nil {
		return err
	}
	reply.Contexts = ctxs
	return nil
}

// Analyzer registers a standing analyzer whose callback address is
// args.CallbackAddr, runs its catch-up pass, and — on success — never
// returns: per the spec's fixed Open Question resolution, the analyzer RPC
// call hangs forever after its first saturation, since a standing
// subscription has no notion of completion. Registration failures do
// return, as an RPC error, since those happen before any subscription
// exists. See engine.Engine.RegisterAnalyzer and DESIGN.md.
func (s *Service) Analyzer(args AnalyzerArgs, reply *struct{}) error {
	cap, err := dialAnalysis(args.CallbackAddr)
	if err != nil {
		return err
	}
	if err := s.engine.RegisterAnalyzer(context.Background(), args.Name, args.Premises, cap); err != nil {
		return err
	}
	block := make(chan struct{})
	<-block
	return nil // unreachable
}

// remoteAnalysis dials a client's Analysis callback address once and
// reuses the connection for every analyze dispatch.
type remoteAnalysis struct {
	client *rpc.Client
	addr   string
}

func dialAnalysis(addr string) (*remoteAnalysis, error) {
	c, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &remoteAnalysis{client: c, addr: addr}, nil
}

func (r *remoteAnalysis) Analyze(ctx context.Context, binding holmes.Context) ([]holmes.Fact, error) {
	var reply AnalyzeReply
	if err := r.client.Call("Analysis.Analyze", AnalyzeArgs{Binding: binding}, &reply); err != nil {
		log.Printf("holmes/rpc: analyze callback to %s failed: %v", r.addr, err)
		return nil, err
	}
	return reply.Facts, nil
}

var _ analyzer.Analysis = (*remoteAnalysis)(nil)
