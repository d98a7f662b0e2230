package provider

import "strings"

// CDN turns a storage path into the URL the CDN serves it from.
type CDN interface {
	Path(relativePath string) string
}

// ServerCDN serves files from a fixed base URL, typically a web server or
// a pull-through CDN in front of the storage bucket.
type ServerCDN struct {
	baseURL string
}

func NewServerCDN(baseURL string) *ServerCDN {
	return &ServerCDN{baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *ServerCDN) Path(relativePath string) string {
	return c.baseURL + "/" + strings.TrimLeft(relativePath, "/")
}
