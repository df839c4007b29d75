package inline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"
)

// FetchError reports an external stylesheet which could not be retrieved.
// It is fatal, the transform produces no partial result.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch stylesheet %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher is the byte-fetching collaborator for external stylesheets keyed
// by URL or local path.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// StyleFetcher retrieves stylesheets over http(s) or from the local
// filesystem, decoding them to UTF-8. A forced character set, when
// configured, overrides any transport-level detection.
type StyleFetcher struct {
	client       *http.Client
	forceCharset string
	log          *zap.Logger
}

// NewStyleFetcher creates a fetcher. forceCharset is an IANA character set
// name applied to every fetched stylesheet, empty for autodetection.
func NewStyleFetcher(forceCharset string, log *zap.Logger) *StyleFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &StyleFetcher{
		client:       &http.Client{Timeout: 30 * time.Second},
		forceCharset: forceCharset,
		log:          log.Named("fetcher"),
	}
}

// Fetch retrieves stylesheet bytes. http:// and https:// locations go over
// the network, anything else is read as a local path. Failures abort the
// transform, there is no retry.
func (f *StyleFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	start := time.Now()

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		data, err = f.fetchHTTP(ctx, location)
	} else {
		data, err = f.fetchFile(location)
	}
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}

	if data, err = f.decode(data); err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}

	f.log.Debug("Fetched stylesheet",
		zap.String("location", location), zap.Int("bytes", len(data)), zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (f *StyleFetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if f.forceCharset != "" {
		// forced character set wins, decoded below
		return io.ReadAll(resp.Body)
	}
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (f *StyleFetcher) fetchFile(location string) ([]byte, error) {
	return os.ReadFile(location)
}

// decode applies the forced character set when one is configured.
func (f *StyleFetcher) decode(data []byte) ([]byte, error) {
	if f.forceCharset == "" {
		return data, nil
	}
	enc, err := ianaindex.IANA.Encoding(f.forceCharset)
	if err != nil {
		return nil, fmt.Errorf("unknown character set %q: %w", f.forceCharset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported character set %q", f.forceCharset)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode with character set %q: %w", f.forceCharset, err)
	}
	return out, nil
}
