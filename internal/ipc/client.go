package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Reel.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Graph retrieves the full graph snapshot.
func (c *Client) Graph() (*GraphResponse, error) {
	var resp GraphResponse
	if err := c.client.Call("Reel.Graph", GraphRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddNode places a node on the canvas.
func (c *Client) AddNode(kind string, x, y float64) (*AddNodeResponse, error) {
	var resp AddNodeResponse
	if err := c.client.Call("Reel.AddNode", AddNodeRequest{Kind: kind, X: x, Y: y}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveNode deletes a node.
func (c *Client) RemoveNode(nodeID string) (*RemoveNodeResponse, error) {
	var resp RemoveNodeResponse
	if err := c.client.Call("Reel.RemoveNode", RemoveNodeRequest{NodeID: nodeID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Connect wires two nodes.
func (c *Client) Connect(sourceID, targetID string) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := c.client.Call("Reel.Connect", ConnectRequest{SourceID: sourceID, TargetID: targetID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Disconnect removes one edge.
func (c *Client) Disconnect(sourceID, targetID string) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := c.client.Call("Reel.Disconnect", ConnectRequest{SourceID: sourceID, TargetID: targetID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Undo pops one history snapshot.
func (c *Client) Undo() (*UndoResponse, error) {
	var resp UndoResponse
	if err := c.client.Call("Reel.Undo", UndoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Run triggers a node's generation action.
func (c *Client) Run(nodeID string) (*RunResponse, error) {
	var resp RunResponse
	if err := c.client.Call("Reel.Run", RunRequest{NodeID: nodeID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export writes a timeline's clip archive to a path on the daemon host.
func (c *Client) Export(nodeID, path string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Reel.Export", ExportRequest{NodeID: nodeID, Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Reel.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
