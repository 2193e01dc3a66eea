// Package blossom uploads image drafts to a Blossom media server.
package blossom

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lifeos/sunday/internal/nostr"
)

const (
	// DefaultServer is the default Blossom server URL.
	DefaultServer = "https://blossom.primal.net"

	// AuthExpiration is how long the auth token is valid.
	AuthExpiration = 5 * time.Minute

	// MaxImageSize is the largest image accepted for upload.
	MaxImageSize = 20 << 20
)

// ErrNotImage is returned when the file is not a recognised image.
var ErrNotImage = errors.New("not an image")

// Client handles Blossom uploads.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new Blossom client.
func NewClient(serverURL string) *Client {
	if serverURL == "" {
		serverURL = DefaultServer
	}
	return &Client{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		httpClient: newSecureHTTPClient(2 * time.Minute),
	}
}

// newSecureHTTPClient creates an HTTP client that refuses TLS below 1.2.
func newSecureHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// UploadResult contains the result of an upload.
type UploadResult struct {
	URL     string `json:"url"`
	SHA256  string `json:"sha256"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Existed bool   `json:"-"` // already on the server, nothing uploaded
}

// ProgressFunc is called during upload to report progress.
type ProgressFunc func(uploaded, total int64)

// Image is a local image file ready for upload.
type Image struct {
	Path        string
	SHA256      string
	Size        int64
	ContentType string
}

// IsLocalPath reports whether item content names a local file rather than a URL.
func IsLocalPath(content string) bool {
	lower := strings.ToLower(content)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return false
	}
	info, err := os.Stat(content)
	return err == nil && info.Mode().IsRegular()
}

// OpenImage hashes a local file and checks that it is an image.
func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if fi.Size() > MaxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", fi.Size(), MaxImageSize)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	contentType := detectContentType(path, head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, filepath.Base(path), contentType)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to hash image: %w", err)
	}

	return &Image{
		Path:        path,
		SHA256:      hex.EncodeToString(h.Sum(nil)),
		Size:        fi.Size(),
		ContentType: contentType,
	}, nil
}

// detectContentType sniffs the data and falls back to the file extension.
func detectContentType(path string, head []byte) string {
	sniffed := http.DetectContentType(head)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return strings.SplitN(byExt, ";", 2)[0]
	}
	return sniffed
}

// Exists checks if a blob already exists on the server.
func (c *Client) Exists(ctx context.Context, sha256 string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", c.BlobURL(sha256), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// Upload signs an upload authorization with privateKey and sends the image.
// Images the server already has are not sent again.
func (c *Client) Upload(ctx context.Context, img *Image, signer nostr.Signer, privateKey string, onProgress ProgressFunc) (*UploadResult, error) {
	exists, err := c.Exists(ctx, img.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to check existence: %w", err)
	}
	if exists {
		return &UploadResult{
			URL:     c.BlobURL(img.SHA256),
			SHA256:  img.SHA256,
			Size:    img.Size,
			Type:    img.ContentType,
			Existed: true,
		}, nil
	}

	authEvent := nostr.BuildBlossomAuthEvent(img.SHA256, "", time.Now().Add(AuthExpiration))
	if err := signer.Sign(authEvent, privateKey); err != nil {
		return nil, fmt.Errorf("failed to sign auth event: %w", err)
	}
	authJSON, err := json.Marshal(authEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth event: %w", err)
	}

	f, err := os.Open(img.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var body io.Reader = f
	if onProgress != nil {
		body = &progressReader{reader: f, total: img.Size, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", c.serverURL+"/upload", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Nostr "+base64.StdEncoding.EncodeToString(authJSON))
	req.Header.Set("Content-Type", img.ContentType)
	req.ContentLength = img.Size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if reason := resp.Header.Get("X-Reason"); reason != "" {
			msg = []byte(reason)
		}
		return nil, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.URL == "" {
		// Some servers don't return a descriptor
		result = UploadResult{URL: c.BlobURL(img.SHA256)}
	}
	result.SHA256 = img.SHA256
	result.Size = img.Size
	result.Type = img.ContentType
	return &result, nil
}

// BlobURL returns the retrieval URL of a blob.
func (c *Client) BlobURL(sha256 string) string {
	return fmt.Sprintf("%s/%s", c.serverURL, sha256)
}

// ServerURL returns the configured server URL.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// progressReader wraps a reader to track progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	uploaded   int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.uploaded += int64(n)
	pr.onProgress(pr.uploaded, pr.total)
	return n, err
}
