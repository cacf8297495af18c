package gtfsrt

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Client fetches and decodes GTFS-RT protobuf feeds.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// FetchFeed retrieves a GTFS-RT FeedMessage from an HTTP URL or a local
// file path. Returns nil for an empty source (allows optional feeds).
func (c *Client) FetchFeed(urlOrPath string) (*gtfsrtpb.FeedMessage, error) {
	if urlOrPath == "" {
		return nil, nil
	}
	var raw []byte
	var err error
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		raw, err = c.fetchHTTP(urlOrPath)
	} else {
		raw, err = os.ReadFile(urlOrPath)
	}
	if err != nil {
		return nil, err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(raw, &fm); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", urlOrPath, err)
	}
	return &fm, nil
}

func (c *Client) fetchHTTP(url string) ([]byte, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
