package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/calendar"
	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/classroom"
	"github.com/trezcool/edutrack/core/news"
	"github.com/trezcool/edutrack/core/user"
	inmemdb "github.com/trezcool/edutrack/storage/database/inmem"
	"github.com/trezcool/edutrack/storage/cache"
	"github.com/trezcool/edutrack/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type (
	fakeIdentity struct {
		profile user.Profile
		err     error
	}

	fakeClassroom struct {
		courses []classroom.Course
		work    map[string][]classroom.Assignment
		err     error
	}

	fakeSearcher struct {
		mu      sync.Mutex
		content string
		err     error
		calls   int
	}

	fakeTokens struct{}

	fakeDeployment struct {
		raw json.RawMessage
		err error
		got chat.Request
	}

	testApp struct {
		srv        *Server
		usrRepo    user.Repository
		identity   *fakeIdentity
		classroom  *fakeClassroom
		searcher   *fakeSearcher
		deployment *fakeDeployment
		logger     *testutil.Logger
	}
)

func (f *fakeIdentity) AuthCodeURL(state string) string {
	return "https://accounts.test/auth?state=" + state
}

func (f *fakeIdentity) Exchange(_ context.Context, code string) (user.Profile, error) {
	if f.err != nil {
		return user.Profile{}, f.err
	}
	return f.profile, nil
}

func (f *fakeClassroom) ListCourses(context.Context, string) ([]classroom.Course, error) {
	return f.courses, f.err
}

func (f *fakeClassroom) ListCourseWork(_ context.Context, _, courseID string) ([]classroom.Assignment, error) {
	return f.work[courseID], nil
}

func (f *fakeSearcher) Complete(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.content, f.err
}

func (fakeTokens) Token(context.Context) (string, error) { return "iam-token", nil }

func (f *fakeDeployment) Chat(_ context.Context, _ string, req chat.Request) (json.RawMessage, error) {
	f.got = req
	return f.raw, f.err
}

func newTestConfig() *core.Config {
	conf := &core.Config{AppName: "EduTrack", Env: "TEST", TestMode: true, FrontendURL: "http://localhost:3000"}
	conf.Server.SessionSecret = "secret"
	conf.Server.SessionCookie = "session"
	conf.Server.SessionExpiration = time.Hour
	conf.Server.AllowedOrigins = []string{"http://localhost:3000"}
	return conf
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := newTestConfig()
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()

	usrRepo := inmemdb.NewUserRepository(inmemdb.Open())
	usrSvc := user.NewService(usrRepo, validate)

	app := &testApp{
		usrRepo:    usrRepo,
		identity:   new(fakeIdentity),
		classroom:  &fakeClassroom{work: map[string][]classroom.Assignment{}},
		searcher:   new(fakeSearcher),
		deployment: new(fakeDeployment),
		logger:     logger,
	}
	classroomSvc := classroom.NewService(app.classroom, logger)

	app.srv = NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		UserSvc:      usrSvc,
		CalendarSvc:  calendar.NewService(usrSvc, classroomSvc, time.UTC, logger),
		ClassroomSvc: classroomSvc,
		NewsSvc:      news.NewService(app.searcher, cache.New[[]news.Article](10*time.Minute), logger),
		ChatSvc:      chat.NewService(fakeTokens{}, app.deployment, "PROMPT", usrSvc, logger),
		Identity:     app.identity,
		Validate:     validate,
		Translator:   translator,
	})
	t.Cleanup(func() { _ = app.srv.Close() })
	return app
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.srv.sessions.generateToken(app.srv.sessions.claims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.srv.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
