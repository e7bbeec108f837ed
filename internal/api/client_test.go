package api_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/g5becks/ndoc/internal/api"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func errorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	return fmt.Sprint(oopsErr.Code())
}

func newMockClient(t *testing.T, routes map[string]string) *api.Client {
	t.Helper()

	client := resty.New().SetBaseURL("https://ndie.test")
	client.SetTransport(roundTripFunc(func(req *http.Request) *http.Response {
		body, ok := routes[req.URL.Path]
		if !ok {
			return jsonResponse(req, http.StatusNotFound, `{"message":"not found"}`)
		}

		return jsonResponse(req, http.StatusOK, body)
	}))

	return api.NewWithClient(client)
}

func TestListPostsUsesBoardPath(t *testing.T) {
	client := newMockClient(t, map[string]string{
		"/QNA": `[
			{"id": 7, "title": "질문", "username": "kim", "content": "**help**", "views": 3,
			 "createdAt": "2024-03-01T09:30:00.123456"}
		]`,
	})

	posts, err := client.ListPosts(context.Background(), api.BoardQnA)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}

	want := []api.PostSummary{{
		ID:        7,
		Title:     "질문",
		Username:  "kim",
		Content:   "**help**",
		Views:     3,
		CreatedAt: api.Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)},
	}}

	if diff := cmp.Diff(want, posts); diff != "" {
		t.Fatalf("ListPosts() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPostDecodesDetail(t *testing.T) {
	client := newMockClient(t, map[string]string{
		"/activity/12": `{"id": 12, "userId": 4, "username": "lee", "title": "해커톤",
			"content": "# 후기", "type": "ACTIVITY", "image": "/img/12.png",
			"createdAt": "2024-05-02T18:00:00"}`,
	})

	post, err := client.GetPost(context.Background(), api.BoardActivity, 12)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}

	doc := post.Document(api.BoardActivity)
	if doc.ID != 12 || doc.Board != "activity" || doc.Image != "/img/12.png" || doc.Body != "# 후기" {
		t.Fatalf("Document() = %+v", doc)
	}

	if !doc.CreatedAt.Equal(time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("CreatedAt = %v", doc.CreatedAt)
	}
}

func TestGetPostNotFound(t *testing.T) {
	client := newMockClient(t, map[string]string{})

	_, err := client.GetPost(context.Background(), api.BoardAnnouncement, 99)
	if err == nil {
		t.Fatalf("GetPost() error = nil, want non-nil")
	}

	if code := errorCode(err); code != "POST_NOT_FOUND" {
		t.Fatalf("GetPost() error = %v, want POST_NOT_FOUND", err)
	}
}

func TestListPostsStatusError(t *testing.T) {
	client := resty.New().SetBaseURL("https://ndie.test")
	client.SetTransport(roundTripFunc(func(req *http.Request) *http.Response {
		return jsonResponse(req, http.StatusForbidden, `{}`)
	}))

	_, err := api.NewWithClient(client).ListPosts(context.Background(), api.BoardActivity)
	if err == nil {
		t.Fatalf("ListPosts() error = nil, want non-nil")
	}

	if code := errorCode(err); code != "API_ERROR" {
		t.Fatalf("ListPosts() error = %v, want API_ERROR", err)
	}
}

func TestParseBoard(t *testing.T) {
	testCases := []struct {
		input    string
		want     api.Board
		wantPath string
		wantErr  bool
	}{
		{input: "announcement", want: api.BoardAnnouncement, wantPath: "/announcement"},
		{input: " QnA ", want: api.BoardQnA, wantPath: "/QNA"},
		{input: "activity", want: api.BoardActivity, wantPath: "/activity"},
		{input: "gallery", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := api.ParseBoard(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseBoard(%q) error = nil, want non-nil", tc.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseBoard(%q) error = %v", tc.input, err)
			}

			if got != tc.want || got.Path() != tc.wantPath {
				t.Fatalf("ParseBoard(%q) = %q (%s), want %q (%s)", tc.input, got, got.Path(), tc.want, tc.wantPath)
			}
		})
	}
}

func TestGetAnswers(t *testing.T) {
	client := newMockClient(t, map[string]string{
		"/QNA/comment/7": `{"commentID": 31, "comment": "설정 파일을 **다시** 확인하세요"}`,
		"/QNA/comment/8": `{"commentID": null, "comment": null}`,
	})

	answers, err := client.GetAnswers(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetAnswers(7) error = %v", err)
	}

	want := []api.Answer{{ID: 31, Content: "설정 파일을 **다시** 확인하세요"}}
	if diff := cmp.Diff(want, answers); diff != "" {
		t.Errorf("GetAnswers(7) mismatch (-want +got):\n%s", diff)
	}

	answers, err = client.GetAnswers(context.Background(), 8)
	if err != nil {
		t.Fatalf("GetAnswers(8) error = %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("GetAnswers(8) = %+v, want none", answers)
	}

	_, err = client.GetAnswers(context.Background(), 9)
	if got := errorCode(err); got != "POST_NOT_FOUND" {
		t.Errorf("GetAnswers(9) code = %q, want POST_NOT_FOUND", got)
	}
}

func TestPostDocumentAppendsAnswers(t *testing.T) {
	post := &api.Post{
		ID:      7,
		Title:   "질문",
		Content: "빌드가 실패합니다\n",
		Answers: []api.Answer{{ID: 1, Content: "캐시를 지우세요"}, {ID: 2, Content: "버전을 올리세요"}},
	}

	got := post.Document(api.BoardQnA).Body
	want := "빌드가 실패합니다\n\n---\n#### 답변\n캐시를 지우세요\n\n버전을 올리세요"
	if got != want {
		t.Errorf("Document().Body = %q, want %q", got, want)
	}

	post.Answers = nil
	if got := post.Document(api.BoardQnA).Body; got != post.Content {
		t.Errorf("Document().Body without answers = %q, want %q", got, post.Content)
	}
}
