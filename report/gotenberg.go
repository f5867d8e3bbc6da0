package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const userAgent = "prospeto-crm"

// A4 portrait in inches, the page size proposal documents print on.
var pageOptions = [][2]string{
	{"paperWidth", "8.27"},
	{"paperHeight", "11.7"},
	{"marginTop", "0.4"},
	{"marginBottom", "0.4"},
}

// Client talks to a Gotenberg instance that turns rendered proposal
// documents into PDFs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks that the converter is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg health returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a proposal document into a PDF. Gotenberg's
// chromium route requires the entry file to be named index.html.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(html)); err != nil {
		return nil, err
	}
	for _, opt := range pageOptions {
		if err := writer.WriteField(opt[0], opt[1]); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("convert returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return io.ReadAll(resp.Body)
}
