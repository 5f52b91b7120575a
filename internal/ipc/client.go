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

// Start requests the daemon to start its services.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Lightbox.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop its services.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Lightbox.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Lightbox.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList returns sessions optionally filtered by statuses.
func (c *Client) SessionList(statuses []string) (*SessionListResponse, error) {
	var resp SessionListResponse
	req := SessionListRequest{Statuses: statuses}
	if err := c.client.Call("Lightbox.SessionList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe returns details for a single session.
func (c *Client) SessionDescribe(id int64) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	req := SessionDescribeRequest{ID: id}
	if err := c.client.Call("Lightbox.SessionDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDiscard removes a draft session and its staged output.
func (c *Client) SessionDiscard(id int64) (*SessionDiscardResponse, error) {
	var resp SessionDiscardResponse
	req := SessionDiscardRequest{ID: id}
	if err := c.client.Call("Lightbox.SessionDiscard", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearPublished removes published sessions.
func (c *Client) ClearPublished() (*ClearPublishedResponse, error) {
	var resp ClearPublishedResponse
	if err := c.client.Call("Lightbox.ClearPublished", ClearPublishedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionReset returns sessions stuck in publishing back to drafts.
func (c *Client) SessionReset() (*SessionResetResponse, error) {
	var resp SessionResetResponse
	if err := c.client.Call("Lightbox.SessionReset", SessionResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Publish starts the publish sequence for a draft session.
func (c *Client) Publish(id int64) (*PublishResponse, error) {
	var resp PublishResponse
	req := PublishRequest{ID: id}
	if err := c.client.Call("Lightbox.Publish", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionHealth returns aggregate session diagnostics.
func (c *Client) SessionHealth() (*SessionHealthResponse, error) {
	var resp SessionHealthResponse
	if err := c.client.Call("Lightbox.SessionHealth", SessionHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Lightbox.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CatalogList returns a page of indexed media assets.
func (c *Client) CatalogList(mediaType, cursor string, pageSize int) (*CatalogListResponse, error) {
	var resp CatalogListResponse
	req := CatalogListRequest{MediaType: mediaType, Cursor: cursor, PageSize: pageSize}
	if err := c.client.Call("Lightbox.CatalogList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CatalogScan triggers a media store rescan.
func (c *Client) CatalogScan() (*CatalogScanResponse, error) {
	var resp CatalogScanResponse
	if err := c.client.Call("Lightbox.CatalogScan", CatalogScanRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CatalogStats returns catalog index statistics.
func (c *Client) CatalogStats() (*CatalogStatsResponse, error) {
	var resp CatalogStatsResponse
	if err := c.client.Call("Lightbox.CatalogStats", CatalogStatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CatalogImport copies an outside file into the media store and indexes it.
func (c *Client) CatalogImport(path string) (*CatalogImportResponse, error) {
	var resp CatalogImportResponse
	req := CatalogImportRequest{Path: path}
	if err := c.client.Call("Lightbox.CatalogImport", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Lightbox.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
