package debate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zblgg/ai-debate-tool/internal/config"
	"github.com/zblgg/ai-debate-tool/internal/openrouter"
)

func TestClassify_Taxonomy(t *testing.T) {
	cases := []struct {
		name  string
		reply *openrouter.Reply
		err   error
		want  OutcomeKind
	}{
		{"success", &openrouter.Reply{StatusCode: 200, Content: "text", HasContent: true}, nil, OutcomeSuccess},
		{"transport error", nil, context.DeadlineExceeded, OutcomeTransportFailure},
		{"server error", &openrouter.Reply{StatusCode: 502, Body: []byte("bad gateway")}, nil, OutcomeMalformedResponse},
		{"missing message", &openrouter.Reply{StatusCode: 200, Body: []byte(`{"choices":[]}`)}, nil, OutcomeMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.reply, tc.err); got.Kind != tc.want {
				t.Errorf("classify = %s, want %s", got.Kind, tc.want)
			}
		})
	}
}

func TestClassify_DiagnosticCarriesBodyPrefix(t *testing.T) {
	body := `{"error":{"message":"model is overloaded"}}` + strings.Repeat("!", 500)
	got := classify(&openrouter.Reply{StatusCode: 503, Body: []byte(body)}, nil)
	if got.Kind != OutcomeMalformedResponse {
		t.Fatalf("expected malformed response, got %s", got.Kind)
	}
	if !strings.Contains(got.Reason, "status 503") || !strings.Contains(got.Reason, "overloaded") {
		t.Errorf("diagnostic should name status and body prefix, got %q", got.Reason)
	}
	if len(got.Reason) > diagnosticLimit {
		t.Errorf("diagnostic must stay within %d chars, got %d", diagnosticLimit, len(got.Reason))
	}
}

func TestHTTPInvoker_TimeoutYieldsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	client := openrouter.NewClient(config.OpenRouterConfig{BaseURL: server.URL}, "key")
	invoker := NewHTTPInvoker(client, quietLogger())

	outcome := invoker.Invoke(context.Background(), Candidate{
		Model:   "slow/model",
		Timeout: 20 * time.Millisecond,
		Role:    "user",
	}, "prompt")

	if outcome.Kind != OutcomeTransportFailure {
		t.Errorf("a candidate exceeding its timeout must classify as transport failure, got %s", outcome.Kind)
	}
}

func TestHTTPInvoker_SuccessPassesTextThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the full answer"}}]}`))
	}))
	defer server.Close()

	client := openrouter.NewClient(config.OpenRouterConfig{BaseURL: server.URL}, "key")
	invoker := NewHTTPInvoker(client, quietLogger())

	outcome := invoker.Invoke(context.Background(), Candidate{Model: "m", Timeout: time.Second, Role: "user"}, "prompt")
	if outcome.Kind != OutcomeSuccess || outcome.Text != "the full answer" {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
}
