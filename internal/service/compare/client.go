package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"roomcompare/internal/model"
)

var (
	// ErrUpstreamStatus is returned when the comparison service answers with a non-2xx status.
	ErrUpstreamStatus = errors.New("comparison service returned an error status")
	// ErrMalformedResponse is returned when the response body does not match the expected contract.
	ErrMalformedResponse = errors.New("malformed comparison response")
)

// maxErrorExcerpt bounds how much of an error body ends up in logs.
const maxErrorExcerpt = 512

// Comparer submits a clean/messy pair and returns the grouped result.
type Comparer interface {
	Compare(ctx context.Context, clean, messy model.Asset) (*model.Result, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL (the /compare path is appended).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint is the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.baseURL + "/compare"
}

// Compare uploads both images as multipart fields image1 and image2. The
// request is aborted when ctx is cancelled.
func (c *Client) Compare(ctx context.Context, clean, messy model.Asset) (*model.Result, error) {
	body, contentType, err := buildMultipart(clean, messy)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	return DecodeResponse(resp.Body)
}

func buildMultipart(clean, messy model.Asset) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, part := range []struct {
		slot  model.Slot
		asset model.Asset
	}{
		{model.SlotClean, clean},
		{model.SlotMessy, messy},
	} {
		if err := writeFile(writer, part.slot, part.asset); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writeFile(writer *multipart.Writer, slot model.Slot, asset model.Asset) error {
	filename := asset.Filename
	if filename == "" {
		filename = slot.String() + ".jpg"
	}
	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		slot.FormField(), escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", slot.FormField(), err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return fmt.Errorf("failed to write %s part: %w", slot.FormField(), err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
