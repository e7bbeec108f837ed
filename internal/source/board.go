package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/ndoc/internal/api"
	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/lockfile"
)

const detailFetchParallel = 4

type boardSource struct {
	name   string
	board  api.Board
	client *api.Client
}

func NewBoard(name string, cfg config.Source, client *api.Client) (Source, error) {
	board, err := api.ParseBoard(cfg.Board)
	if err != nil {
		return nil, oops.With("source", name).Wrap(err)
	}

	if client == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("source", name).
			Errorf("board source %q needs an API client", name)
	}

	return &boardSource{
		name:   name,
		board:  board,
		client: client,
	}, nil
}

func (s *boardSource) Sync(
	ctx context.Context,
	destDir string,
	prevLock *lockfile.LockEntry,
	opts SyncOptions,
	tracker *progress.Tracker,
) (result *SyncResult, err error) {
	defer func() { trackerDone(tracker, err) }()

	posts, err := s.fetchPosts(ctx, tracker)
	if err != nil {
		return nil, err
	}

	newDocs := make(map[string]string, len(posts))
	encoded := make(map[string][]byte, len(posts))

	for _, post := range posts {
		doc := post.Document(s.board)

		data, encodeErr := document.Encode(doc)
		if encodeErr != nil {
			return nil, oops.With("source", s.name).Wrap(encodeErr)
		}

		newDocs[doc.FileName()] = document.HashBytes(data)
		encoded[doc.FileName()] = data
	}

	changes := planChanges(prevLock, newDocs, opts.Force)
	lockEntry := &lockfile.LockEntry{
		Type:      config.SourceTypeBoard,
		Board:     string(s.board),
		SyncedAt:  time.Now().UTC(),
		Documents: newDocs,
	}

	if !opts.DryRun {
		applyErr := changes.apply(s.name, destDir, func(path string) ([]byte, error) {
			return encoded[path], nil
		})
		if applyErr != nil {
			return nil, applyErr
		}
	}

	return changes.result(lockEntry), nil
}

// fetchPosts lists the board and completes each listing: activity posts need
// their detail for the body and image, Q&A questions need their answers.
func (s *boardSource) fetchPosts(ctx context.Context, tracker *progress.Tracker) ([]*api.Post, error) {
	summaries, err := s.client.ListPosts(ctx, s.board)
	if err != nil {
		return nil, oops.With("source", s.name).Wrap(err)
	}

	trackerTotal(tracker, len(summaries))

	posts := make([]*api.Post, len(summaries))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detailFetchParallel)

	for i := range summaries {
		group.Go(func() error {
			defer trackerStep(tracker)

			post, fetchErr := s.completePost(groupCtx, &summaries[i])
			if fetchErr == nil {
				posts[i] = post
				return nil
			}

			if isNotFound(fetchErr) {
				slog.Debug("post disappeared during sync", "source", s.name, "id", summaries[i].ID)
				return nil
			}

			return oops.With("source", s.name).Wrap(fetchErr)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	kept := posts[:0]
	for _, post := range posts {
		if post != nil {
			kept = append(kept, post)
		}
	}

	return kept, nil
}

func (s *boardSource) completePost(ctx context.Context, summary *api.PostSummary) (*api.Post, error) {
	post := summary.Post()

	if s.board == api.BoardActivity {
		detail, err := s.client.GetPost(ctx, s.board, summary.ID)
		if err != nil {
			return nil, err
		}

		if detail.Views == 0 {
			detail.Views = summary.Views
		}
		post = detail
	}

	if s.board == api.BoardQnA {
		answers, err := s.client.GetAnswers(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		post.Answers = answers
	}

	return post, nil
}

func isNotFound(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}

	return fmt.Sprint(oopsErr.Code()) == "POST_NOT_FOUND"
}
