package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/oauth"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/sse"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- service stubs ----

type userServiceStub struct{ user.UserService }

func (userServiceStub) List(ctx context.Context, f user.UserFilter) (user.ListUserResponse, error) {
	return user.ListUserResponse{Users: []user.UserResponse{}, Page: f.Page, Limit: f.Limit}, nil
}

type attendanceStub struct {
	attendance.AttendanceService
	filter attendance.Filter
}

func (s *attendanceStub) Clusters(ctx context.Context) ([]string, error) {
	return []string{"Alpha", "Bravo"}, nil
}

func (s *attendanceStub) Raw(ctx context.Context, f attendance.Filter) ([]attendance.RawEntry, error) {
	s.filter = f
	return []attendance.RawEntry{{Date: "2025-03-03", Cluster: "Alpha", Status: "P"}}, nil
}

func (s *attendanceStub) SaveRecord(ctx context.Context, req attendance.SaveRecordRequest) (attendance.SaveResult, error) {
	return attendance.SaveResult{Success: false, Duplicate: true, Message: "Record for " + req.AgentName + " already exists."}, nil
}

type nteStub struct {
	nte.NTEService
	created nte.CreateFormRequest
}

func (s *nteStub) Create(ctx context.Context, req nte.CreateFormRequest) (int, error) {
	s.created = req
	return 7, nil
}

func (s *nteStub) Preview(ctx context.Context, id int) (nte.Preview, error) {
	return nte.Preview{}, nte.ErrFormNotFound
}

type scheduleStub struct{ schedule.ScheduleService }

func (scheduleStub) Template() []byte {
	return []byte("employee_code,start_date,end_date,shift_code\n")
}

type engineStub struct {
	workflow.Engine
	cancelled string
}

func (e *engineStub) CancelInstance(ctx context.Context, id string, req workflow.CloseInstanceRequest) (workflow.InstanceDetailResponse, error) {
	e.cancelled = id
	return workflow.InstanceDetailResponse{}, nil
}

type pingerStub struct{ err error }

func (p pingerStub) Healthy(ctx context.Context) error { return p.err }

// ---- fixture ----

type routerFixture struct {
	router     http.Handler
	jwt        jwt.Service
	hub        *sse.Hub
	attendance *attendanceStub
	nte        *nteStub
	engine     *engineStub
	files      storage.FileStorage
}

func newRouterFixture(t *testing.T, db Pinger) routerFixture {
	t.Helper()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour, 24*time.Hour, false)
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)

	f := routerFixture{
		jwt:        jwtSvc,
		hub:        sse.NewHub(),
		attendance: &attendanceStub{},
		nte:        &nteStub{},
		engine:     &engineStub{},
		files:      files,
	}
	f.router = NewRouter(jwtSvc, Handlers{
		Auth:       NewAuthHandler(jwtSvc, nil, oauth.NewGoogleService("", "", "", nil), "http://localhost:3000", false),
		User:       NewUserHandler(userServiceStub{}),
		Employee:   NewEmployeeHandler(nil),
		Department: NewDepartmentHandler(nil),
		Workflow:   NewWorkflowHandler(nil, nil, f.engine),
		Schedule:   NewScheduleHandler(scheduleStub{}, 0),
		Analytics:  NewAnalyticsHandler(nil),
		Attendance: NewAttendanceHandler(f.attendance),
		NTE:        NewNTEHandler(f.nte),
		Document:   NewDocumentHandler(nil, file.NewFileService(files)),
		System:     NewSystemHandler(f.hub, files, db, nil),
	}, RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}})
	return f
}

func (f routerFixture) token(t *testing.T, id string, role user.Role) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken(user.User{ID: id, Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func (f routerFixture) do(t *testing.T, method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestRouter_PermissionGates(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"agent lacks user.manage", f.token(t, "agent-1", user.RoleAgent), http.StatusForbidden},
		{"admin", f.token(t, "admin-1", user.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/v1/users?page=2&limit=5", tt.token, nil, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_AttendanceMacro(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	tok := f.token(t, "sup-1", user.RoleSupervisor)

	w := f.do(t, http.MethodGet, "/macros/attendance?api=clusters", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Alpha","Bravo"]`, w.Body.String())

	w = f.do(t, http.MethodGet, "/macros/attendance?month=3&cluster=Alpha", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, attendance.Filter{Month: 3, Cluster: "Alpha"}, f.attendance.filter)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha", rows[0]["Cluster"])

	w = f.do(t, http.MethodGet, "/macros/attendance?api=summary&month=13", tok, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AttendanceDuplicateIsConflict(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	tok := f.token(t, "sup-1", user.RoleSupervisor)

	body, _ := json.Marshal(attendance.SaveRecordRequest{Date: "2025-03-03", Supervisor: "Lea", AgentName: "Ana", Status: "P"})
	w := f.do(t, http.MethodPost, "/api/v1/attendance/records", tok, body, "application/json")
	require.Equal(t, http.StatusConflict, w.Code)

	var res attendance.SaveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Duplicate)
	assert.Equal(t, "Record for Ana already exists.", res.Message)
}

func TestRouter_NTEMacroEnvelope(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	tok := f.token(t, "sup-1", user.RoleSupervisor)

	w := f.do(t, http.MethodPost, "/macros/nte", tok, []byte(`{"action":"createIRNTE","data":{"employeeName":"Ana Cruz"}}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","id":7}`, w.Body.String())
	assert.Equal(t, "Ana Cruz", f.nte.created.EmployeeName)

	w = f.do(t, http.MethodPost, "/macros/nte", tok, []byte(`{"action":"renameIRNTE"}`), "application/json")
	assert.JSONEq(t, `{"status":"ERROR","error":"Unknown action"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/macros/nte?action=preview&id=99", tok, nil, "")
	assert.JSONEq(t, `{"status":"ERROR","error":"Record not found"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/macros/nte", tok, []byte(`not json`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ERROR","error":"Invalid or missing JSON data in request."}`, w.Body.String())
}

func TestRouter_Schedule(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	tok := f.token(t, "mgr-1", user.RoleManager)

	w := f.do(t, http.MethodGet, "/api/v1/schedules/shifts?day=monday", tok, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/schedules/template", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule_template.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "employee_code,"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())
	w = f.do(t, http.MethodPost, "/api/v1/schedules/upload", tok, buf.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_UploadLogo(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 20))))

	form := func(name string, content []byte) ([]byte, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("logo", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return buf.Bytes(), mw.FormDataContentType()
	}

	body, ct := form("logo.png", img.Bytes())
	w := f.do(t, http.MethodPut, "/api/v1/documents/logo", f.token(t, "mgr-1", user.RoleManager), body, ct)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := f.token(t, "adm-1", user.RoleAdmin)
	w = f.do(t, http.MethodPut, "/api/v1/documents/logo", admin, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ok, err := f.files.Exists(context.Background(), file.LogoKey)
	require.NoError(t, err)
	assert.True(t, ok)

	body, ct = form("logo.gif", img.Bytes())
	w = f.do(t, http.MethodPut, "/api/v1/documents/logo", admin, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CancelInstanceWithoutBody(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	tok := f.token(t, "mgr-1", user.RoleManager)

	w := f.do(t, http.MethodPost, "/api/v1/workflows/instances/inst-9/cancel", tok, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inst-9", f.engine.cancelled)
}

func TestRouter_HealthAndFiles(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	w := f.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	down := newRouterFixture(t, pingerStub{err: errors.New("connection refused")})
	w = down.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unreachable", decodeBody(t, w)["database"])

	_, err := f.files.Upload(context.Background(), strings.NewReader("%PDF-1.4"), "documents/a.pdf", "application/pdf")
	require.NoError(t, err)
	w = f.do(t, http.MethodGet, "/files/documents/a.pdf", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = f.do(t, http.MethodGet, "/files/documents/missing.pdf", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSystemHandler_EventsStream(t *testing.T) {
	f := newRouterFixture(t, pingerStub{})
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?jwt="+f.token(t, "agent-1", user.RoleAgent), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if line == "\n" {
				return strings.Join(lines, "")
			}
			lines = append(lines, line)
		}
	}

	assert.Contains(t, readEvent(), "event: connected")

	require.Eventually(t, func() bool { return f.hub.Stats().Streams == 1 }, time.Second, 10*time.Millisecond)
	f.hub.Publish("agent-1", sse.Event{Event: "task_assigned", Data: map[string]string{"task_id": "t-1"}})
	got := readEvent()
	assert.Contains(t, got, "event: task_assigned")
	assert.Contains(t, got, `data: {"task_id":"t-1"}`)
}

func TestDecodeOptionalJSON(t *testing.T) {
	var dst workflow.CloseInstanceRequest
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	assert.True(t, decodeOptionalJSON(w, r, &dst, "Test"))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	assert.False(t, decodeOptionalJSON(w, r, &dst, "Test"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormIDRejectsGarbage(t *testing.T) {
	r := chi.NewRouter()
	h := NewNTEHandler(&nteStub{})
	r.Get("/nte/{id}", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nte/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
