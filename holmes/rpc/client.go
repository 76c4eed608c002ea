package rpc

import (
	"context"
	"net"
	"net/rpc"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/analyzer"
)

// Client is a thin wrapper over *rpc.Client exposing the four spec §6
// methods with holmes types instead of the raw wire structs.
type Client struct {
	rc *rpc.Client
}

// Dial connects to a Server's address.
func Dial(addr string) (*Client, error) {
	rc, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{rc: rc}, nil
}

func (c *Client) Close() error { return c.rc.Close() }

func (c *Client) RegisterType(name string, argTypes []holmes.HType) (bool, error) {
	var reply RegisterTypeReply
	err := c.rc.Call("Holmes.RegisterType", RegisterTypeArgs{Name: name, ArgTypes: argTypes}, &reply)
	return reply.OK, err
}

func (c *Client) Set(facts []holmes.Fact) error {
	var reply SetReply
	return c.rc.Call("Holmes.Set", SetArgs{Facts: facts}, &reply)
}

func (c *Client) Derive(premises []holmes.FactTemplate) ([]holmes.Context, error) {
	var reply DeriveReply
	if err := c.rc.Call("Holmes.Derive", DeriveArgs{Premises: premises}, &reply); err != nil {
		return nil, err
	}
	return reply.Contexts, nil
}

// RegisterAnalyzer starts a standing analyzer and returns immediately
// without waiting for a reply — one never arrives, per the spec's "hangs
// forever" contract (see Service.Analyzer). Callers that need to know
// whether registration itself failed should watch the returned *rpc.Call's
// Done channel; a failure surfaces there even though success never does.
func (c *Client) RegisterAnalyzer(name string, premises []holmes.FactTemplate, callbackAddr string) *rpc.Call {
	return c.rc.Go("Holmes.Analyzer", AnalyzerArgs{Name: name, Premises: premises, CallbackAddr: callbackAddr}, &struct{}{}, nil)
}

// analysisService adapts a local analyzer.Analysis to the net/rpc method
// shape the server calls back into.
type analysisService struct {
	impl analyzer.Analysis
}

func (s *analysisService) Analyze(args AnalyzeArgs, reply *AnalyzeReply) error {
	facts, err := s.impl.Analyze(context.Background(), args.Binding)
	if err != nil {
		return err
	}
	reply.Facts = facts
	return nil
}

// AnalysisServer hosts a local Analysis capability so a Server can call
// back into it by address.
type AnalysisServer struct {
	ln net.Listener
}

// ServeAnalysis starts a listener exposing cap as the callback target for
// Client.RegisterAnalyzer. addr should usually be ":0" to pick a free
// port; the bound address is returned via AnalysisServer.Addr for passing
// to RegisterAnalyzer.
func ServeAnalysis(addr string, cap analyzer.Analysis) (*AnalysisServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := rpc.NewServer()
	if err := srv.RegisterName("Analysis", &analysisService{impl: cap}); err != nil {
		ln.Close()
		return nil, err
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.ServeConn(conn)
		}
	}()
	return &AnalysisServer{ln: ln}, nil
}

func (a *AnalysisServer) Addr() string { return a.ln.Addr().String() }
func (a *AnalysisServer) Close() error { return a.ln.Close() }
