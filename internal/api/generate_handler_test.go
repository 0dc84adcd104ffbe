package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{"teacherName":"Ms. Smith","course":"Biology","gradeLevel":"10","content":"When is the lab report due?"}`

func doGenerate(t *testing.T, s *testServer, method, account, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/generate", strings.NewReader(body))
	if account != "" {
		req.Header.Set(testAccountHeader, account)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestGenerate_RejectsNonPost(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			s := newTestServer(t)
			rec, out := doGenerate(t, s, method, "acct-1", validBody)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "Method not allowed", out["error"])
			assert.Equal(t, 0, s.ai.calls)
		})
	}
}

func TestGenerate_MethodCheckedBeforeSession(t *testing.T) {
	s := newTestServer(t)
	rec, out := doGenerate(t, s, http.MethodGet, "", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", out["error"])
}

func TestGenerate_UnauthorizedRegardlessOfBody(t *testing.T) {
	bodies := []string{validBody, "", "not json", `{"teacherName":""}`}
	for _, body := range bodies {
		s := newTestServer(t)
		rec, out := doGenerate(t, s, http.MethodPost, "", body)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "body %q", body)
		assert.Equal(t, "Unauthorized", out["error"])
		assert.Equal(t, 0, s.ai.calls)
	}
}

func TestGenerate_Success(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 3)

	rec, out := doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dear Ms. Smith, ...", out["generatedEmail"])
	assert.EqualValues(t, 2, out["remainingTokens"])
	assert.NotContains(t, out, "error")
	assert.Equal(t, 2, s.balance(t, userID))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGenerate_NewUserStartsWithDefaultBalance(t *testing.T) {
	s := newTestServer(t)

	rec, out := doGenerate(t, s, http.MethodPost, "fresh", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, out["remainingTokens"])
}

func TestGenerate_LastTokenRendersZero(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 1)

	_, out := doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	require.Contains(t, out, "remainingTokens")
	assert.EqualValues(t, 0, out["remainingTokens"])
	assert.Equal(t, 0, s.balance(t, userID))

	_, out = doGenerate(t, s, http.MethodPost, "acct-1", validBody)
	assert.Equal(t, "You're out of tokens!", out["error"])
	assert.Equal(t, 1, s.ai.calls)
}

func TestGenerate_OutOfTokens(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 0)

	rec, out := doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You're out of tokens!", out["error"])
	assert.Equal(t, 0, s.balance(t, userID))
	assert.Equal(t, 0, s.ai.calls)
}

func TestGenerate_OutOfTokensTakesPrecedenceOverMissingFields(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "acct-1", 0)

	_, out := doGenerate(t, s, http.MethodPost, "acct-1", `{}`)

	assert.Equal(t, "You're out of tokens!", out["error"])
}

func TestGenerate_MissingParameters(t *testing.T) {
	bodies := map[string]string{
		"empty object":     `{}`,
		"blank teacher":    `{"teacherName":"   ","course":"Biology","gradeLevel":"10","content":"q"}`,
		"missing content":  `{"teacherName":"Ms. Smith","course":"Biology","gradeLevel":"10"}`,
		"malformed json":   `{"teacherName":`,
		"empty body":       ``,
		"generated only":   `{"generatedEmail":"Dear ..."}`,
		"whitespace grade": `{"teacherName":"Ms. Smith","course":"Biology","gradeLevel":"\t","content":"q"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t)
			userID := s.seedUser(t, "acct-1", 3)

			rec, out := doGenerate(t, s, http.MethodPost, "acct-1", body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Missing required parameters", out["error"])
			assert.Equal(t, 3, s.balance(t, userID))
			assert.Equal(t, 0, s.ai.calls)
		})
	}
}

func TestGenerate_ProviderFailure(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 3)
	s.ai.err = errors.New("upstream 503")

	rec, out := doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Error.", out["error"])
	assert.NotContains(t, out, "generatedEmail")
	assert.Equal(t, 3, s.balance(t, userID))
}

func TestGenerate_EmptyCompletionIsAFailure(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 3)
	s.ai.reply = "  \n"

	_, out := doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	assert.Equal(t, "Error.", out["error"])
	assert.Equal(t, 3, s.balance(t, userID))
}

func TestGenerate_IgnoresIncomingGeneratedEmail(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "acct-1", 3)
	body := `{"teacherName":"Ms. Smith","course":"Biology","gradeLevel":"10","content":"q","generatedEmail":"INJECTED"}`

	_, out := doGenerate(t, s, http.MethodPost, "acct-1", body)

	assert.Equal(t, "Dear Ms. Smith, ...", out["generatedEmail"])
	require.Len(t, s.ai.prompts, 1)
	assert.NotContains(t, s.ai.prompts[0], "INJECTED")
}

func TestGenerate_FieldsReachPromptVerbatim(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "acct-1", 3)
	body := `{"teacherName":"  Mr. O'Neil ","course":"AP Chem","gradeLevel":"11th","content":"Is the quiz on Friday?"}`

	doGenerate(t, s, http.MethodPost, "acct-1", body)

	require.Len(t, s.ai.prompts, 1)
	prompt := s.ai.prompts[0]
	assert.Contains(t, prompt, "  Mr. O'Neil ")
	assert.Contains(t, prompt, "AP Chem")
	assert.Contains(t, prompt, "11th")
	assert.Contains(t, prompt, "Is the quiz on Friday?")
}
