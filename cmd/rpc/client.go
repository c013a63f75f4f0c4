package rpc

import (
	"bytes"
	"io"
	"net/http"

	"github.com/meridian-network/meridian/lib"
)

// Client is a typed HTTP client over the Meridian RPC routes
type Client struct {
	rpcURL    string
	rpcPort   string
	adminPort string
	client    http.Client
}

// NewClient() creates a Client pointed at a node's rpc and admin interfaces
func NewClient(rpcURL, rpcPort, adminPort string) *Client {
	return &Client{rpcURL: rpcURL, rpcPort: rpcPort, adminPort: adminPort, client: http.Client{}}
}

// Version() retrieves the node's software version
func (c *Client) Version() (version *string, err lib.ErrorI) {
	version = new(string)
	err = c.get(VersionRouteName, "", version)
	return
}

// Transaction() submits a transaction and returns the admission verdict
func (c *Client) Transaction(request txRequest) (p *txResponse, err lib.ErrorI) {
	p = new(txResponse)
	bz, err := lib.MarshalJSON(request)
	if err != nil {
		return nil, err
	}
	err = c.post(TxRouteName, bz, p)
	return
}

// Health() retrieves the node's liveness probe
func (c *Client) Health() (p *healthResponse, err lib.ErrorI) {
	p = new(healthResponse)
	err = c.get(HealthRouteName, "", p)
	return
}

// MempoolInfo() retrieves the pool's current shape
func (c *Client) MempoolInfo() (p *mempoolInfoResponse, err lib.ErrorI) {
	p = new(mempoolInfoResponse)
	err = c.get(MempoolInfoRouteName, "", p)
	return
}

// Pending() retrieves a page of an account's buffered transactions
func (c *Client) Pending(address string, params lib.PageParams) (p *lib.Page, err lib.ErrorI) {
	p = new(lib.Page)
	bz, err := lib.MarshalJSON(pendingRequest{Address: address, PageParams: params})
	if err != nil {
		return nil, err
	}
	err = c.post(PendingRouteName, bz, p)
	return
}

// Commit() notifies the node of the finalized sequence numbers of a committed block
func (c *Client) Commit(commits map[string]uint64) (p *commitRequest, err lib.ErrorI) {
	p = new(commitRequest)
	bz, err := lib.MarshalJSON(commitRequest{Commits: commits})
	if err != nil {
		return nil, err
	}
	err = c.post(CommitRouteName, bz, p, true)
	return
}

// ResourceUsage() retrieves the node's process and system usage
func (c *Client) ResourceUsage() (p *resourceUsageResponse, err lib.ErrorI) {
	p = new(resourceUsageResponse)
	err = c.get(ResourceUsageRouteName, "", p, true)
	return
}

// Config() retrieves the node's configuration
func (c *Client) Config() (p *lib.Config, err lib.ErrorI) {
	p = new(lib.Config)
	err = c.get(ConfigRouteName, "", p, true)
	return
}

func (c *Client) url(routeName, param string, admin ...bool) string {
	// if rpc port and admin ports are defined then it's a local RPC deployment
	if c.rpcPort != "" && c.adminPort != "" {
		if admin != nil && admin[0] {
			return "http://" + localhost + colon + c.adminPort + routePaths[routeName].Path + param
		}
		return c.rpcURL + colon + c.rpcPort + routePaths[routeName].Path + param
	}
	// if rpc port is not defined then it's consider a remote RPC deployment
	return c.rpcURL + routePaths[routeName].Path + param
}

func (c *Client) post(routeName string, json []byte, ptr any, admin ...bool) lib.ErrorI {
	resp, err := c.client.Post(c.url(routeName, "", admin...), ApplicationJSON, bytes.NewBuffer(json))
	if err != nil {
		return ErrPostRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

func (c *Client) get(routeName, param string, ptr any, admin ...bool) lib.ErrorI {
	resp, err := c.client.Get(c.url(routeName, param, admin...))
	if err != nil {
		return ErrGetRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

func (c *Client) unmarshal(resp *http.Response, ptr any) lib.ErrorI {
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrReadBody(err)
	}
	if resp.StatusCode != http.StatusOK {
		return ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	return lib.UnmarshalJSON(bz, ptr)
}
