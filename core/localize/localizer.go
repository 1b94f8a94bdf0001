// Package localize resolves pending external references: it derives a
// stable local name for each URI, fetches the asset exactly once, and
// persists it under the asset directory. An asset already on disk marks
// the reference Resolved without touching the network, so interrupted or
// repeated runs converge instead of re-fetching.
//
// Name assignments are recorded in a manifest file inside the asset
// directory. A URI keeps its manifest name forever, so the on-disk
// short-circuit can never hand one URI's artifact to a different URI,
// no matter which subset of references is pending on a given run.
//
// Failures are terminal per reference and never abort the batch. There is
// no automatic retry: re-running the phase is cheap and safe because
// on-disk existence is the sole resumption signal.
package localize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/presspipe/core/refs"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 8
	defaultUserAgent   = "PressPipe/1.0 (+https://github.com/gaurav-prasanna/presspipe)"

	// maxRedirectHops is the redirect-chain bound: a chain of exactly
	// this many hops succeeds, one more fails terminally.
	maxRedirectHops = 5

	// manifestName is the URI→name assignment record kept alongside the
	// assets themselves.
	manifestName = ".presspipe-assets.json"
)

// errTooManyRedirects is returned through the HTTP client when a chain
// exceeds maxRedirectHops.
var errTooManyRedirects = errors.New("too many redirects")

// Localizer downloads external references into a local asset directory.
type Localizer struct {
	client      *http.Client
	assetDir    string
	prefix      string // public address prefix, e.g. "/images/"
	concurrency int
	logger      *slog.Logger
}

// Options configures a Localizer. Zero values fall back to defaults.
type Options struct {
	AssetDir    string
	Prefix      string
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// New creates a Localizer, ensuring the asset directory exists.
func New(opts Options) (*Localizer, error) {
	if opts.AssetDir == "" {
		return nil, errors.New("localize: asset directory is required")
	}
	if err := os.MkdirAll(opts.AssetDir, 0755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Prefix == "" {
		opts.Prefix = "/" + filepath.Base(opts.AssetDir) + "/"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Localizer{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirectHops {
					return errTooManyRedirects
				}
				return nil
			},
		},
		assetDir:    opts.AssetDir,
		prefix:      opts.Prefix,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}, nil
}

// Localize resolves every pending reference in the table. References are
// independent: a failure on one is recorded and never delays the others.
// The only error Localize itself returns is a manifest read/write failure,
// which would make name assignment unsafe across runs.
func (l *Localizer) Localize(ctx context.Context, table *refs.Table) error {
	pending := table.Pending()
	names, err := l.assignNames(pending)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, ref := range pending {
		ref := ref
		g.Go(func() error {
			l.resolve(ctx, table, ref.URI, names[ref.URI])
			return nil
		})
	}
	// Workers record outcomes in the table and never return errors.
	_ = g.Wait()
	return nil
}

// resolve handles one reference end to end.
func (l *Localizer) resolve(ctx context.Context, table *refs.Table, uri, name string) {
	local := l.prefix + name
	target := filepath.Join(l.assetDir, name)

	// Idempotent short-circuit: existence on disk is the identity check,
	// not a network round-trip.
	if _, err := os.Stat(target); err == nil {
		table.Resolve(uri, local)
		return
	}

	body, err := l.fetch(ctx, uri)
	if err != nil {
		l.logger.Warn("reference resolution failed", "uri", uri, "reason", err)
		table.Fail(uri, err.Error())
		return
	}
	if err := os.WriteFile(target, body, 0644); err != nil {
		l.logger.Warn("persisting asset failed", "uri", uri, "path", target, "error", err)
		table.Fail(uri, fmt.Sprintf("write: %v", err))
		return
	}
	table.Resolve(uri, local)
}

// fetch retrieves the URI, following at most maxRedirectHops redirects.
func (l *Localizer) fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) {
			return nil, errTooManyRedirects
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// assignNames derives a local name per reference from the URI's final path
// segment, query stripped. When two distinct URIs collide on the same
// name, the later one (in sorted URI order, see Table.Pending) gets a
// short hash of its canonical URI spliced in before the extension.
//
// Assignments are durable: once a URI has been given a name, the manifest
// records it, and every later run — including runs where the original
// claimant of a contested name is no longer pending — reuses the recorded
// name instead of re-deriving it from whatever happens to be pending.
func (l *Localizer) assignNames(pending []*refs.Reference) (map[string]string, error) {
	recorded, err := l.loadManifest()
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]string, len(recorded)) // name → URI
	for uri, name := range recorded {
		claimed[name] = uri
	}

	names := make(map[string]string, len(pending))
	changed := false
	for _, ref := range pending {
		if name, ok := recorded[ref.URI]; ok {
			names[ref.URI] = name
			continue
		}
		name := localName(ref.URI)
		if owner, taken := claimed[name]; taken && owner != ref.URI {
			name = disambiguate(name, ref.URI)
		}
		claimed[name] = ref.URI
		recorded[ref.URI] = name
		names[ref.URI] = name
		changed = true
	}

	if changed {
		if err := l.saveManifest(recorded); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// loadManifest reads the URI→name record from the asset directory. A
// missing manifest is an empty one.
func (l *Localizer) loadManifest() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(l.assetDir, manifestName))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading asset manifest: %w", err)
	}
	recorded := map[string]string{}
	if err := json.Unmarshal(data, &recorded); err != nil {
		return nil, fmt.Errorf("parsing asset manifest: %w", err)
	}
	return recorded, nil
}

func (l *Localizer) saveManifest(recorded map[string]string) error {
	data, err := json.MarshalIndent(recorded, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding asset manifest: %w", err)
	}
	target := filepath.Join(l.assetDir, manifestName)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("writing asset manifest: %w", err)
	}
	return nil
}

// localName derives a filesystem-safe name from the URI's last path
// segment. URIs without a usable segment fall back to a hash-based name.
func localName(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "asset-" + shortHash(uri)
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "/" || base == "." {
		return "asset-" + shortHash(uri)
	}
	return sanitize(base)
}

// disambiguate splices a short URI hash in before the extension.
func disambiguate(name, uri string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + shortHash(uri) + ext
}

// shortHash is an 8-hex-digit FNV-1a digest of the canonical URI.
func shortHash(uri string) string {
	h := fnv.New32a()
	h.Write([]byte(uri))
	return fmt.Sprintf("%08x", h.Sum32())
}

// sanitize keeps alphanumerics, dots, dashes, and underscores; everything
// else becomes an underscore.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == '.' || ch == '-' || ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
