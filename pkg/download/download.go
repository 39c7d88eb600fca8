package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"voxrelay/pkg/logging"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// ErrFileAcquisition wraps every failure to fetch an attachment.
var ErrFileAcquisition = errors.New("file acquisition failed")

// DefaultMaxBytes matches the Bot API download limit.
const DefaultMaxBytes = 20 * 1000 * 1000

// URLResolver turns a Telegram file ID into a temporary direct download URL.
type URLResolver interface {
	ResolveFileURL(fileID string) (string, error)
}

// Acquirer downloads attachments into transient files.
type Acquirer struct {
	fs         afero.Fs
	resolver   URLResolver
	httpClient *http.Client
	maxBytes   uint64
}

// NewAcquirer creates an Acquirer. maxBytes == 0 means DefaultMaxBytes.
func NewAcquirer(fs afero.Fs, resolver URLResolver, httpClient *http.Client, maxBytes uint64) *Acquirer {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Acquirer{
		fs:         fs,
		resolver:   resolver,
		httpClient: httpClient,
		maxBytes:   maxBytes,
	}
}

// Fetch resolves fileID and writes its content to dst, creating dst's directory
// if needed. It returns the number of bytes written.
func (a *Acquirer) Fetch(ctx context.Context, fileID, dst string) (uint64, error) {
	url, err := a.resolver.ResolveFileURL(fileID)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve file %s: %v", ErrFileAcquisition, fileID, err)
	}

	n, err := a.fetchURL(ctx, url, dst)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrFileAcquisition, err)
	}

	logging.Debug("📥 Downloaded attachment", "file_id", fileID, "size", humanize.Bytes(n), "path", dst)
	return n, nil
}

func (a *Acquirer) fetchURL(ctx context.Context, url, dst string) (uint64, error) {
	if err := a.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create transient dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("failed to download file: status code %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	out, err := a.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("failed to create transient file: %w", err)
	}
	defer out.Close()

	limited := io.LimitReader(resp.Body, int64(a.maxBytes)+1)
	n, err := io.Copy(out, limited)
	if err != nil {
		return uint64(n), fmt.Errorf("failed to copy data: %w", err)
	}
	if uint64(n) > a.maxBytes {
		return uint64(n), fmt.Errorf("file too large (more than %s)", humanize.Bytes(a.maxBytes))
	}

	if err := out.Close(); err != nil {
		return uint64(n), fmt.Errorf("failed to write transient file: %w", err)
	}
	return uint64(n), nil
}
