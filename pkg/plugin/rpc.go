package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// Solver is the interface solver plugins implement.
type Solver interface {
	// Train fits a model. Errors carrying a code should be *RPCError.
	Train(ctx context.Context, problem Problem, params Params) (*Model, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}

// SolverRPC implements the go-plugin Plugin interface for solvers.
type SolverRPC struct {
	plugin.Plugin
	Impl Solver
}

// Server returns an RPC server for this plugin.
func (p *SolverRPC) Server(*plugin.MuxBroker) (any, error) {
	return &SolverRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *SolverRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &SolverRPCClient{client: c}, nil
}

// SolverRPCServer is the RPC server implementation for solvers.
type SolverRPCServer struct {
	Impl Solver
}

// Train implements the RPC method for model training.
func (s *SolverRPCServer) Train(req TrainRequest, resp *TrainResponse) error {
	model, err := s.Impl.Train(context.Background(), req.Problem, req.Params)
	if err != nil {
		resp.Error = err.Error()
		resp.Code = codeOf(err)
		return nil
	}
	resp.Model = model
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *SolverRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// SolverRPCClient is the RPC client implementation for solvers.
type SolverRPCClient struct {
	client *rpc.Client
}

// Train calls the remote Train method. A cancelled ctx returns immediately;
// the call itself keeps running in the plugin until the host kills it.
func (c *SolverRPCClient) Train(ctx context.Context, problem Problem, params Params) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var resp TrainResponse
	call := c.client.Go("Plugin.Train", TrainRequest{Problem: problem, Params: params}, &resp, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}

	if call.Error != nil {
		return nil, call.Error
	}
	if resp.Error != "" {
		return nil, &RPCError{Code: resp.Code, Message: resp.Error}
	}
	return resp.Model, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *SolverRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}
