package source

import (
	"cmp"
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"path"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/lockfile"
)

// urlSource mirrors a single file served over HTTP, revalidated with the
// ETag and Last-Modified values kept in the lock entry.
type urlSource struct {
	name     string
	source   config.Source
	filename string
	client   *resty.Client
}

func NewURL(name string, cfg config.Source) (Source, error) {
	return &urlSource{
		name:     name,
		source:   cfg,
		filename: cmp.Or(cfg.Filename, filenameFromURL(name, cfg.URL)),
		client:   resty.New().SetHeader("User-Agent", "ndoc"),
	}, nil
}

func (s *urlSource) Sync(
	ctx context.Context,
	destDir string,
	prevLock *lockfile.LockEntry,
	opts SyncOptions,
	tracker *progress.Tracker,
) (result *SyncResult, err error) {
	defer func() { trackerDone(tracker, err) }()
	trackerTotal(tracker, 1)
	defer trackerStep(tracker)

	failed := oops.Code("DOWNLOAD_FAILED").With("source", s.name).With("url", s.source.URL)

	request := s.client.R().SetContext(ctx)
	if !opts.Force && prevLock != nil {
		if prevLock.ETag != "" {
			request.SetHeader("If-None-Match", prevLock.ETag)
		}
		if prevLock.LastMod != "" {
			request.SetHeader("If-Modified-Since", prevLock.LastMod)
		}
	}

	response, err := request.Get(s.source.URL)
	switch {
	case err != nil:
		return nil, failed.Wrapf(err, "downloading url source")
	case response.StatusCode() == http.StatusNotModified:
		return &SyncResult{Skipped: true, LockEntry: s.revalidated(prevLock)}, nil
	case !response.IsSuccess():
		return nil, failed.
			With("status", response.StatusCode()).
			Errorf("url source returned status %d", response.StatusCode())
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, failed.Wrapf(err, "reading response body")
	}

	documents := map[string]string{s.filename: document.HashBytes(content)}
	changes := planChanges(prevLock, documents, opts.Force)

	if !opts.DryRun {
		err := changes.apply(s.name, destDir, func(string) ([]byte, error) { return content, nil })
		if err != nil {
			return nil, err
		}
	}

	return changes.result(&lockfile.LockEntry{
		Type:      config.SourceTypeURL,
		ETag:      response.Header().Get("ETag"),
		LastMod:   response.Header().Get("Last-Modified"),
		SyncedAt:  time.Now().UTC(),
		Documents: documents,
	}), nil
}

// revalidated keeps the previous hashes and validators after a 304.
func (s *urlSource) revalidated(prev *lockfile.LockEntry) *lockfile.LockEntry {
	entry := cmp.Or(prev.Clone(), &lockfile.LockEntry{})
	entry.Type = config.SourceTypeURL
	entry.SyncedAt = time.Now().UTC()
	return entry
}

// filenameFromURL names the stored file after the last URL path segment,
// falling back to "<source>.txt".
func filenameFromURL(sourceName, rawURL string) string {
	if parsed, err := neturl.Parse(rawURL); err == nil {
		switch base := path.Base(parsed.Path); base {
		case "", ".", "/":
		default:
			return base
		}
	}
	return sourceName + ".txt"
}
