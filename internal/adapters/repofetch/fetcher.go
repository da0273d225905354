// Package repofetch implements ports.RepositoryFetcher: it downloads,
// caches, and parses repository indexes, with a DNS-caching HTTP transport,
// per-host circuit breaking, and exponential-backoff retry, and disk
// caching with a freshness window and a one-shot corrupt-cache retry
// (§4.3).
package repofetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/rs/dnscache"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/adapters/repoindex"
	"go.rv.dev/rv/internal/core/domain"
)

// Options configures a Fetcher.
type Options struct {
	CacheRoot        string
	FreshnessWindow  time.Duration
	UserAgent        string
	MaxRetries       int
	BaseDelay        time.Duration
}

const defaultUserAgent = "rv/1"

// Fetcher implements ports.RepositoryFetcher over HTTP.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	cacheRoot  string
	freshness  time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// New builds a Fetcher. The returned background DNS-cache refresh loop runs
// for the process lifetime; there is one Fetcher per process.
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.FreshnessWindow == 0 {
		opts.FreshnessWindow = time.Hour
	}

	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	return &Fetcher{
		client: &http.Client{
			Timeout: 2 * time.Minute,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if dialErr == nil {
							return conn, nil
						}
						lastErr = dialErr
					}
					return nil, lastErr
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		cacheRoot:  opts.CacheRoot,
		freshness:  opts.FreshnessWindow,
		breakers:   make(map[string]*circuit.Breaker),
	}
}

// FetchIndex returns the cached index for repo if it is fresh, or downloads
// and parses a new one otherwise. A parse failure against the cached bytes
// triggers exactly one re-download before domain.ErrRepositoryFetchFailed is
// surfaced.
func (f *Fetcher) FetchIndex(ctx context.Context, repo domain.Repository, engineVersion, arch string) (*domain.RepositoryIndex, error) {
	isBinary := detectBinary(repo.URL)
	path := f.indexPath(repo.URL, engineVersion, arch)

	if data, fresh := f.readFresh(path); fresh {
		if idx, err := repoindex.Parse(data, repo.URL, engineVersion, arch, isBinary); err == nil {
			return idx, nil
		}
		// Corrupt cached copy: fall through to exactly one re-download.
	}

	data, err := f.download(ctx, repo.URL)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrRepositoryFetchFailed, err.Error())
	}

	idx, err := repoindex.Parse(data, repo.URL, engineVersion, arch, isBinary)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrRepositoryFetchFailed, err.Error())
	}

	if err := f.writeCache(path, data); err != nil {
		return nil, zerr.Wrap(err, "cache repository index")
	}

	return idx, nil
}

func (f *Fetcher) indexPath(repoURL, engineVersion, arch string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return domain.ReposPath(f.cacheRoot, hex.EncodeToString(sum[:])[:16], engineVersion, arch)
}

func (f *Fetcher) readFresh(path string) ([]byte, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > f.freshness {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (f *Fetcher) writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// download fetches repoURL through a per-host circuit breaker with
// exponential-backoff retry on rate-limit/server-error responses.
func (f *Fetcher) download(ctx context.Context, repoURL string) ([]byte, error) {
	breaker := f.breakerFor(repoURL)
	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s", hostOf(repoURL))
	}

	var body []byte
	err := breaker.Call(func() error {
		b, fetchErr := f.fetchWithRetry(ctx, repoURL)
		body = b
		return fetchErr
	}, 0)
	return body, err
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, repoURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * (rand.Float64() * 0.1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay + jitter):
			}
		}

		body, retryable, err := f.doFetch(ctx, repoURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) doFetch(ctx context.Context, repoURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, repoURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, true, readErr
		}
		return data, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func (f *Fetcher) breakerFor(repoURL string) *circuit.Breaker {
	host := hostOf(repoURL)

	f.mu.RLock()
	b, ok := f.breakers[host]
	f.mu.RUnlock()
	if ok {
		return b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.breakers[host]; ok {
		return b
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 30 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Multiplier = 2.0

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    bo,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	f.breakers[host] = b
	return b
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// detectBinary reports whether a repository URL names a precompiled-binary
// mirror, following the common CRAN-style path convention of "/bin/" vs.
// "/src/contrib" trees.
func detectBinary(repoURL string) bool {
	return strings.Contains(repoURL, "/bin/") || strings.Contains(repoURL, "/binary/")
}
