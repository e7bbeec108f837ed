package source_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/g5becks/ndoc/internal/config"
	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/lockfile"
	"github.com/g5becks/ndoc/internal/source"
)

const announcementList = `[
  {"id": 1, "title": "모집 안내", "username": "admin", "content": "# 모집\n**마감** 금요일", "views": 10,
   "createdAt": "2024-03-01T09:00:00"},
  {"id": 2, "title": "휴회", "username": "admin", "content": "다음 주 휴회", "views": 4,
   "createdAt": "2024-03-08T09:00:00"}
]`

func newBoardSource(t *testing.T, board string, responses map[string]source.MockHTTPResponse) source.Source {
	t.Helper()

	src, err := source.New("notices", config.Source{Type: config.SourceTypeBoard, Board: board}, source.Env{
		API: source.NewMockAPIClient(t, responses),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return src
}

func TestBoardSyncWritesDocuments(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "announcement", map[string]source.MockHTTPResponse{
		"/announcement": {Body: announcementList},
	})

	destDir := t.TempDir()
	result, err := src.Sync(context.Background(), destDir, nil, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Downloaded != 2 || result.Deleted != 0 {
		t.Fatalf("Sync() = %+v, want 2 downloaded", result)
	}

	if result.LockEntry.Board != "announcement" || len(result.LockEntry.Documents) != 2 {
		t.Fatalf("LockEntry = %+v", result.LockEntry)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "1.ndoc"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	doc, err := document.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if doc.Title != "모집 안내" || doc.Board != "announcement" || doc.Body != "# 모집\n**마감** 금요일" {
		t.Fatalf("Decode() = %+v", doc)
	}
}

func TestBoardSyncSkipsUnchangedAndDeletesStale(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "announcement", map[string]source.MockHTTPResponse{
		"/announcement": {Body: announcementList},
	})

	destDir := t.TempDir()
	first, err := src.Sync(context.Background(), destDir, nil, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	second, err := src.Sync(context.Background(), destDir, first.LockEntry, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if !second.Skipped {
		t.Fatalf("second Sync() Skipped = false, want true")
	}

	stalePath := filepath.Join(destDir, "9.ndoc")
	if writeErr := os.WriteFile(stalePath, []byte("old"), 0o644); writeErr != nil {
		t.Fatalf("WriteFile() error = %v", writeErr)
	}

	prevLock := first.LockEntry.Clone()
	prevLock.Documents["9.ndoc"] = "old-hash"
	delete(prevLock.Documents, "2.ndoc")

	third, err := src.Sync(context.Background(), destDir, prevLock, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("third Sync() error = %v", err)
	}

	if third.Downloaded != 1 || third.Deleted != 1 {
		t.Fatalf("third Sync() = %+v, want 1 downloaded 1 deleted", third)
	}

	if _, statErr := os.Stat(stalePath); !os.IsNotExist(statErr) {
		t.Fatalf("stale document still present")
	}
}

func TestBoardSyncForceAndDryRun(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "qna", map[string]source.MockHTTPResponse{
		"/QNA": {Body: `[{"id": 3, "title": "질문", "username": "kim", "content": "help", "views": 1,
			"createdAt": "2024-03-01T09:00:00"}]`},
		"/QNA/comment/3": {Body: `{"commentID": null, "comment": null}`},
	})

	destDir := t.TempDir()
	prevLock := &lockfile.LockEntry{Type: "board"}

	first, err := src.Sync(context.Background(), destDir, prevLock, source.SyncOptions{DryRun: true}, nil)
	if err != nil {
		t.Fatalf("Sync(dry-run) error = %v", err)
	}

	if first.Downloaded != 1 {
		t.Fatalf("Downloaded = %d, want 1", first.Downloaded)
	}

	if _, statErr := os.Stat(filepath.Join(destDir, "3.ndoc")); !os.IsNotExist(statErr) {
		t.Fatalf("dry-run wrote a document")
	}

	forced, err := src.Sync(context.Background(), destDir, first.LockEntry, source.SyncOptions{Force: true}, nil)
	if err != nil {
		t.Fatalf("Sync(force) error = %v", err)
	}

	if forced.Skipped || forced.Downloaded != 1 {
		t.Fatalf("Sync(force) = %+v, want 1 downloaded", forced)
	}
}

func TestBoardSyncActivityFetchesDetails(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "activity", map[string]source.MockHTTPResponse{
		"/activity": {Body: `[
			{"id": 5, "title": "해커톤", "username": "lee", "views": 42, "createdAt": "2024-05-02T18:00:00"},
			{"id": 6, "title": "삭제됨", "username": "lee", "views": 1, "createdAt": "2024-05-03T18:00:00"}
		]`},
		"/activity/5": {Body: `{"id": 5, "userId": 2, "username": "lee", "title": "해커톤",
			"content": "## 후기", "type": "ACTIVITY", "image": "/img/5.png", "createdAt": "2024-05-02T18:00:00"}`},
		"/activity/6": {Status: http.StatusNotFound, Body: `{}`},
	})

	destDir := t.TempDir()
	result, err := src.Sync(context.Background(), destDir, nil, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Downloaded != 1 {
		t.Fatalf("Downloaded = %d, want 1", result.Downloaded)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "5.ndoc"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	doc, err := document.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if doc.Image != "/img/5.png" || doc.Views != 42 || doc.Body != "## 후기" {
		t.Fatalf("Decode() = %+v", doc)
	}
}

func TestBoardSyncQnAStoresAnswers(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "qna", map[string]source.MockHTTPResponse{
		"/QNA": {Body: `[
			{"id": 3, "title": "빌드 질문", "username": "kim", "content": "빌드가 멈춥니다", "views": 2,
			 "createdAt": "2024-03-01T09:00:00"},
			{"id": 4, "title": "미답변", "username": "park", "content": "모임 장소?", "views": 1,
			 "createdAt": "2024-03-02T09:00:00"}
		]`},
		"/QNA/comment/3": {Body: `{"commentID": 12, "comment": "**캐시**를 지우세요"}`},
		"/QNA/comment/4": {Body: `{"commentID": null, "comment": null}`},
	})

	destDir := t.TempDir()
	result, err := src.Sync(context.Background(), destDir, nil, source.SyncOptions{}, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Downloaded != 2 {
		t.Fatalf("Downloaded = %d, want 2", result.Downloaded)
	}

	answered := readDocument(t, filepath.Join(destDir, "3.ndoc"))
	if want := "빌드가 멈춥니다\n\n---\n#### 답변\n**캐시**를 지우세요"; answered.Body != want {
		t.Errorf("answered Body = %q, want %q", answered.Body, want)
	}

	unanswered := readDocument(t, filepath.Join(destDir, "4.ndoc"))
	if unanswered.Body != "모임 장소?" {
		t.Errorf("unanswered Body = %q, want the question only", unanswered.Body)
	}
}

func TestBoardSyncTrackerCountsSkippedPosts(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "activity", map[string]source.MockHTTPResponse{
		"/activity": {Body: `[
			{"id": 5, "title": "해커톤", "username": "lee", "views": 42, "createdAt": "2024-05-02T18:00:00"},
			{"id": 6, "title": "삭제됨", "username": "lee", "views": 1, "createdAt": "2024-05-03T18:00:00"}
		]`},
		"/activity/5": {Body: `{"id": 5, "title": "해커톤", "content": "후기"}`},
		"/activity/6": {Status: http.StatusNotFound, Body: `{}`},
	})

	tracker := &progress.Tracker{Message: "activity"}
	if _, err := src.Sync(context.Background(), t.TempDir(), nil, source.SyncOptions{}, tracker); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if tracker.Value() != tracker.Total || tracker.Total != 2 {
		t.Errorf("tracker = %d/%d, want 2/2", tracker.Value(), tracker.Total)
	}
}

func readDocument(t *testing.T, path string) *document.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	doc, err := document.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	return doc
}

func TestBoardSyncReturnsAPIError(t *testing.T) {
	t.Parallel()

	src := newBoardSource(t, "announcement", map[string]source.MockHTTPResponse{
		"/announcement": {Status: http.StatusInternalServerError, Body: `{}`},
	})

	if _, err := src.Sync(context.Background(), t.TempDir(), nil, source.SyncOptions{}, nil); err == nil {
		t.Fatalf("Sync() error = nil, want non-nil")
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := source.New("bad", config.Source{Type: "ftp"}, source.Env{})
	if err == nil {
		t.Fatalf("New() error = nil, want non-nil")
	}
}
