package fakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"telegram-ai-agent/internal/adapters/source"
	"telegram-ai-agent/internal/cache"
	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/pkg/config"
)

const testCode = "12345"

type recordingNotifier struct {
	mu        sync.Mutex
	summaries []domain.Summary
}

func (n *recordingNotifier) NotifySummary(_ context.Context, s domain.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, s)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.summaries)
}

type apiTester struct {
	t      *testing.T
	ts     *httptest.Server
	client *http.Client
}

func newAPITester(t *testing.T, opts ...Option) *apiTester {
	t.Helper()

	cfg := &config.Config{Server: config.Server{
		Host:             "127.0.0.1",
		PathPrefix:       "/api",
		VerificationCode: testCode,
	}}

	src := source.NewExportSource()
	_, err := SeedDemo(src)
	require.NoError(t, err)

	base := []Option{
		WithGroupResolver(src),
		WithMessageSource(src),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	srv := New(cfg, NewStore(WithHashCost(bcrypt.MinCost)), NewJobStore(), cache.NewVerificationStore(), append(base, opts...)...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Wait()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiTester{t: t, ts: ts, client: &http.Client{Jar: jar}}
}

// call выполняет запрос к /api и декодирует ответ в out (если он не nil).
func (a *apiTester) call(method, path string, body, out any) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.ts.URL+"/api"+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signIn регистрирует пользователя и входит под ним.
func (a *apiTester) signIn(username string) {
	a.t.Helper()
	creds := map[string]string{"username": username, "email": username + "@example.com", "password": "secret"}
	require.Equal(a.t, http.StatusCreated, a.call(http.MethodPost, "/users/register/", creds, nil))
	require.Equal(a.t, http.StatusOK, a.call(http.MethodPost, "/users/login/", creds, nil))
}

// verifiedAccount подключает и подтверждает аккаунт Telegram.
func (a *apiTester) verifiedAccount() domain.TelegramAccount {
	a.t.Helper()
	var created domain.CreateAccountResponse
	require.Equal(a.t, http.StatusCreated, a.call(http.MethodPost, "/telegram/accounts/",
		domain.CreateAccountRequest{PhoneNumber: "+15551234567", APIID: "42", APIHash: "0123456789abcdef"}, &created))

	var verified domain.VerifyCodeResponse
	require.Equal(a.t, http.StatusOK, a.call(http.MethodPost, accountPath(created.ID, "verify_code"),
		domain.VerifyCodeRequest{Code: testCode, RequestID: created.RequestID}, &verified))
	return verified.Account
}

func accountPath(id int64, action string) string {
	return "/telegram/accounts/" + strconv.FormatInt(id, 10) + "/" + action + "/"
}

func groupPath(id int64, action string) string {
	return "/telegram/groups/" + strconv.FormatInt(id, 10) + "/" + action + "/"
}

func TestServer_Health(t *testing.T) {
	a := newAPITester(t)
	resp, err := a.client.Get(a.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RequiresSession(t *testing.T) {
	a := newAPITester(t)

	var body map[string]string
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/telegram/accounts/", nil, &body))
	assert.Equal(t, detailNotAuthenticated, body["detail"])

	a.signIn("alice")
	var me domain.User
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/users/me/", nil, &me))
	assert.Equal(t, "alice", me.Username)

	require.Equal(t, http.StatusOK, a.call(http.MethodPost, "/users/logout/", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/users/me/", nil, nil))
}

func TestServer_RegisterAndLoginErrors(t *testing.T) {
	a := newAPITester(t)
	a.signIn("alice")

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/users/register/",
		map[string]string{"username": "alice", "email": "x@example.com", "password": "p"}, &body))
	assert.Equal(t, "Username already exists", body.Error)

	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodPost, "/users/login/",
		map[string]string{"username": "alice", "password": "wrong"}, &body))
	assert.Equal(t, "Invalid credentials", body.Error)

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/users/login/", map[string]string{}, &body))
	assert.Equal(t, "Username and password are required", body.Error)
}

func TestServer_AccountVerification(t *testing.T) {
	a := newAPITester(t)
	a.signIn("alice")

	var created domain.CreateAccountResponse
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/telegram/accounts/",
		domain.CreateAccountRequest{PhoneNumber: "+15551234567", APIID: "42", APIHash: "hash"}, &created))
	require.NotEmpty(t, created.RequestID)
	assert.False(t, created.IsActive)

	var challenge domain.VerificationChallenge
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, accountPath(created.ID, "authenticate"), nil, &challenge))
	assert.Equal(t, "Verification code sent to your phone", challenge.Message)
	assert.NotEqual(t, created.RequestID, challenge.RequestID)

	tests := []struct {
		name     string
		req      domain.VerifyCodeRequest
		wantMsg  string
		wantCode string
	}{
		{name: "ПустойКод", req: domain.VerifyCodeRequest{RequestID: challenge.RequestID}, wantMsg: "Verification code is required"},
		{name: "УстаревшийЗапрос", req: domain.VerifyCodeRequest{Code: testCode, RequestID: created.RequestID}, wantMsg: "Invalid request ID", wantCode: "invalid_request_id"},
		{name: "НеверныйКод", req: domain.VerifyCodeRequest{Code: "00000", RequestID: challenge.RequestID}, wantMsg: "Invalid verification code", wantCode: "invalid_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorResponse
			assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, accountPath(created.ID, "verify_code"), tt.req, &body))
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}

	var verified domain.VerifyCodeResponse
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, accountPath(created.ID, "verify_code"),
		domain.VerifyCodeRequest{Code: testCode, RequestID: challenge.RequestID}, &verified))
	assert.Equal(t, "Authentication successful", verified.Message)
	assert.True(t, verified.Account.IsActive)

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, accountPath(created.ID, "verify_code"),
		domain.VerifyCodeRequest{Code: testCode, RequestID: challenge.RequestID}, &body), "request_id одноразовый")

	var patched domain.TelegramAccount
	require.Equal(t, http.StatusOK, a.call(http.MethodPatch, "/telegram/accounts/"+strconv.FormatInt(created.ID, 10)+"/",
		map[string]bool{"is_active": false}, &patched))
	assert.False(t, patched.IsActive)

	assert.Equal(t, http.StatusNoContent, a.call(http.MethodDelete, "/telegram/accounts/"+strconv.FormatInt(created.ID, 10)+"/", nil, nil))
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodGet, "/telegram/accounts/"+strconv.FormatInt(created.ID, 10)+"/", nil, nil))
}

func TestServer_InvalidAccountRequest(t *testing.T) {
	a := newAPITester(t)
	a.signIn("alice")

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/telegram/accounts/",
		domain.CreateAccountRequest{PhoneNumber: "123", APIID: "42", APIHash: "hash"}, &body))
	assert.Contains(t, body.Error, "phone_number")
}

func TestServer_SummaryFlow(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newAPITester(t, WithNotifier(notifier))
	a.signIn("alice")
	account := a.verifiedAccount()

	var joined domain.JoinGroupResponse
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, "/telegram/groups/join/",
		domain.JoinGroupRequest{AccountID: account.ID, GroupLink: DemoGroupLink}, &joined))
	assert.Equal(t, "Successfully joined group", joined.Message)
	assert.Equal(t, "gophers_demo", joined.Group.Name)
	group := joined.Group

	var collected domain.CollectMessagesResponse
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, groupPath(group.ID, "collect_messages"),
		map[string]int64{"account_id": account.ID}, &collected))
	assert.Equal(t, 7, collected.Count, "служебные сообщения не собираются")
	assert.Equal(t, "Successfully collected 7 new messages", collected.Message)

	require.Equal(t, http.StatusOK, a.call(http.MethodPost, groupPath(group.ID, "collect_messages"),
		map[string]int64{"account_id": account.ID}, &collected))
	assert.Equal(t, 0, collected.Count)

	var msgs []domain.GroupMessage
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/telegram/messages/?group_id="+strconv.FormatInt(group.ID, 10), nil, &msgs))
	assert.Len(t, msgs, 7)
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodGet, "/telegram/messages/?group_id=abc", nil, nil))

	var job domain.SummaryJob
	require.Equal(t, http.StatusAccepted, a.call(http.MethodPost, "/summaries/generate/",
		domain.GenerateSummaryRequest{GroupID: group.ID}, &job))
	assert.Equal(t, 7, job.Days, "окно по умолчанию - неделя")

	require.Eventually(t, func() bool {
		a.call(http.MethodGet, "/summaries/jobs/"+job.ID+"/", nil, &job)
		return job.Status.Done()
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, domain.JobStatusCompleted, job.Status, job.ErrorMessage)
	require.NotNil(t, job.Summary)
	assert.Contains(t, job.Summary.Content, "gophers_demo")
	assert.WithinDuration(t, job.Summary.EndDate.AddDate(0, 0, -7), job.Summary.StartDate, time.Second)
	assert.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 10*time.Millisecond)

	var summary domain.Summary
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/summaries/"+strconv.FormatInt(job.SummaryID, 10)+"/", nil, &summary))
	assert.Equal(t, group.ID, summary.GroupID())

	var fb domain.Feedback
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/feedback/",
		domain.FeedbackRequest{Summary: summary.ID, Rating: 5}, &fb))
	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/feedback/",
		domain.FeedbackRequest{Summary: summary.ID, Rating: 4}, &body))
	assert.Equal(t, "You have already provided feedback for this summary", body.Error)

	var assocs []domain.Association
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/telegram/associations/", nil, &assocs))
	require.Len(t, assocs, 1)
	require.NotNil(t, assocs[0].LastCollection)

	var toggled associationResponse
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, "/telegram/associations/"+strconv.FormatInt(assocs[0].ID, 10)+"/toggle_active/", nil, &toggled))
	assert.Equal(t, "Association is now inactive", toggled.Message)
	assert.False(t, toggled.Association.IsActive)
}

func TestServer_GenerateErrors(t *testing.T) {
	a := newAPITester(t)
	a.signIn("alice")
	account := a.verifiedAccount()

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/summaries/generate/", map[string]int{}, &body))
	assert.Equal(t, "Group ID is required", body.Error)

	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPost, "/summaries/generate/",
		domain.GenerateSummaryRequest{GroupID: 999, Days: 7}, &body))
	assert.Equal(t, "You do not have access to this group", body.Error)

	var joined domain.JoinGroupResponse
	require.Equal(t, http.StatusOK, a.call(http.MethodPost, "/telegram/groups/join/",
		domain.JoinGroupRequest{AccountID: account.ID, GroupLink: "@empty_chat"}, &joined))

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/summaries/generate/",
		domain.GenerateSummaryRequest{GroupID: joined.Group.ID, Days: 400}, &body))

	var job domain.SummaryJob
	require.Equal(t, http.StatusAccepted, a.call(http.MethodPost, "/summaries/generate/",
		domain.GenerateSummaryRequest{GroupID: joined.Group.ID, Days: 3}, &job))
	require.Eventually(t, func() bool {
		a.call(http.MethodGet, "/summaries/jobs/"+job.ID+"/", nil, &job)
		return job.Status.Done()
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Equal(t, msgNoMessagesInPeriod, job.ErrorMessage)

	assert.Equal(t, http.StatusNotFound, a.call(http.MethodGet, "/summaries/jobs/unknown/", nil, &body))
}

func TestServer_JoinAndCollectErrors(t *testing.T) {
	a := newAPITester(t)
	a.signIn("alice")

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/telegram/groups/join/", map[string]string{}, &body))
	assert.Equal(t, "Account ID and group link are required", body.Error)

	var created domain.CreateAccountResponse
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/telegram/accounts/",
		domain.CreateAccountRequest{PhoneNumber: "+15551234567", APIID: "42", APIHash: "hash"}, &created))

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/telegram/groups/join/",
		domain.JoinGroupRequest{AccountID: created.ID, GroupLink: DemoGroupLink}, &body))
	assert.Equal(t, "Account not authenticated", body.Error)

	assert.Equal(t, http.StatusNotFound, a.call(http.MethodPost, "/telegram/groups/join/",
		domain.JoinGroupRequest{AccountID: 9999, GroupLink: DemoGroupLink}, &body))

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, groupPath(1, "collect_messages"), map[string]int{}, &body))
	assert.Equal(t, "Account ID is required", body.Error)

	assert.Equal(t, http.StatusNotFound, a.call(http.MethodGet, "/telegram/groups/abc/", nil, &body))
}
