//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/config"
	"go-edu-platform/internal/handler"
	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/oauth"
	"go-edu-platform/internal/router"
	"go-edu-platform/internal/service"
)

// memStore backs every service with plain maps so the whole HTTP surface can
// be exercised without a database.
type memStore struct {
	users       map[string]model.User // keyed by lowercase username
	oauthLinks  map[string]model.OAuthAccount
	subjects    map[string]model.Subject
	teachers    map[string]model.Teacher
	assignments map[string]model.TeacherSubject
	categories  map[string]model.VideoCategory
	videos      map[string]model.Video
	progress    map[string]model.VideoProgress // keyed by user id + "/" + video id
	tests       map[string]model.Test
	results     []model.TestResult
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]model.User{},
		oauthLinks:  map[string]model.OAuthAccount{},
		subjects:    map[string]model.Subject{},
		teachers:    map[string]model.Teacher{},
		assignments: map[string]model.TeacherSubject{},
		categories:  map[string]model.VideoCategory{},
		videos:      map[string]model.Video{},
		progress:    map[string]model.VideoProgress{},
		tests:       map[string]model.Test{},
	}
}

// UserStore

func (s *memStore) FindByID(ctx context.Context, id string) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	if u, ok := s.users[strings.ToLower(username)]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := s.users[strings.ToLower(username)]
	return ok, nil
}

func (s *memStore) Create(_ context.Context, u model.User) error {
	key := strings.ToLower(u.Username)
	if _, ok := s.users[key]; ok {
		return model.ErrUserAlreadyExists
	}
	s.users[key] = u
	return nil
}

func (s *memStore) UpdateRole(_ context.Context, id string, role model.Role) error {
	for key, u := range s.users {
		if u.ID == id {
			u.Role = role
			s.users[key] = u
			return nil
		}
	}
	return model.ErrUserNotFound
}

func (s *memStore) SetActive(_ context.Context, id string, active bool) error {
	for key, u := range s.users {
		if u.ID == id {
			u.IsActive = active
			s.users[key] = u
			return nil
		}
	}
	return model.ErrUserNotFound
}

func (s *memStore) List(_ context.Context) ([]model.UserInfo, error) {
	infos := make([]model.UserInfo, 0, len(s.users))
	for _, u := range s.users {
		infos = append(infos, u.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Username < infos[j].Username })
	return infos, nil
}

func (s *memStore) ExistsByRole(_ context.Context, role model.Role) (bool, error) {
	for _, u := range s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// OAuthStore

func (s *memStore) FindByProviderUserID(_ context.Context, provider string, providerUserID string) (model.OAuthAccount, error) {
	if a, ok := s.oauthLinks[provider+"/"+providerUserID]; ok {
		return a, nil
	}
	return model.OAuthAccount{}, model.ErrUserNotFound
}

func (s *memStore) CreateOAuth(_ context.Context, a model.OAuthAccount) error {
	key := a.Provider + "/" + a.ProviderUserID
	if _, ok := s.oauthLinks[key]; ok {
		return model.ErrAlreadyExists
	}
	s.oauthLinks[key] = a
	return nil
}

func (s *memStore) UpdateProfile(_ context.Context, id string, email *string, fullName *string, picture *string) error {
	for key, a := range s.oauthLinks {
		if a.ID == id {
			if email != nil {
				a.Email = email
			}
			if fullName != nil {
				a.FullName = fullName
			}
			if picture != nil {
				a.Picture = picture
			}
			s.oauthLinks[key] = a
			return nil
		}
	}
	return model.ErrUserNotFound
}

// oauthStoreAdapter renames CreateOAuth to the Create the interface wants,
// since memStore.Create is taken by UserStore.
type oauthStoreAdapter struct{ *memStore }

func (a oauthStoreAdapter) Create(ctx context.Context, acc model.OAuthAccount) error {
	return a.CreateOAuth(ctx, acc)
}

// SubjectStore

type subjectStore struct{ *memStore }

func (s subjectStore) Create(_ context.Context, subj model.Subject) error {
	s.subjects[subj.ID] = subj
	return nil
}

func (s subjectStore) FindByID(_ context.Context, id string) (model.Subject, error) {
	if subj, ok := s.subjects[id]; ok {
		return subj, nil
	}
	return model.Subject{}, model.ErrSubjectNotFound
}

func (s subjectStore) List(_ context.Context, isActive *bool, limit int, offset int) ([]model.Subject, error) {
	out := []model.Subject{}
	for _, subj := range s.subjects {
		if isActive != nil && subj.IsActive != *isActive {
			continue
		}
		out = append(out, subj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return []model.Subject{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s subjectStore) Update(_ context.Context, subj model.Subject) error {
	if _, ok := s.subjects[subj.ID]; !ok {
		return model.ErrSubjectNotFound
	}
	s.subjects[subj.ID] = subj
	return nil
}

func (s subjectStore) Delete(_ context.Context, id string) error {
	if _, ok := s.subjects[id]; !ok {
		return model.ErrSubjectNotFound
	}
	delete(s.subjects, id)
	return nil
}

// TeacherStore

type teacherStore struct{ *memStore }

func (s teacherStore) Create(_ context.Context, t model.Teacher) error {
	for _, existing := range s.teachers {
		if existing.UserID == t.UserID {
			return model.ErrAlreadyExists
		}
	}
	s.teachers[t.ID] = t
	return nil
}

func (s teacherStore) FindByID(_ context.Context, id string) (model.Teacher, error) {
	if t, ok := s.teachers[id]; ok {
		return t, nil
	}
	return model.Teacher{}, model.ErrTeacherNotFound
}

func (s teacherStore) FindByUserID(_ context.Context, userID string) (model.Teacher, error) {
	for _, t := range s.teachers {
		if t.UserID == userID {
			return t, nil
		}
	}
	return model.Teacher{}, model.ErrTeacherNotFound
}

func (s teacherStore) List(_ context.Context, subjectID string, limit int, offset int) ([]model.Teacher, error) {
	out := []model.Teacher{}
	for _, t := range s.teachers {
		if subjectID != "" && !s.teaches(t.ID, subjectID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	if offset >= len(out) {
		return []model.Teacher{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s teacherStore) teaches(teacherID string, subjectID string) bool {
	_, ok := s.assignments[teacherID+"/"+subjectID]
	return ok
}

func (s teacherStore) Update(_ context.Context, t model.Teacher) error {
	if _, ok := s.teachers[t.ID]; !ok {
		return model.ErrTeacherNotFound
	}
	s.teachers[t.ID] = t
	return nil
}

func (s teacherStore) Delete(_ context.Context, id string) error {
	if _, ok := s.teachers[id]; !ok {
		return model.ErrTeacherNotFound
	}
	delete(s.teachers, id)
	return nil
}

func (s teacherStore) AssignSubject(_ context.Context, ts model.TeacherSubject) error {
	key := ts.TeacherID + "/" + ts.SubjectID
	if _, ok := s.assignments[key]; ok {
		return model.ErrAlreadyExists
	}
	s.assignments[key] = ts
	return nil
}

func (s teacherStore) UnassignSubject(_ context.Context, teacherID string, subjectID string) error {
	delete(s.assignments, teacherID+"/"+subjectID)
	return nil
}

// VideoStore and ProgressStore

type videoStore struct{ *memStore }

func (s videoStore) CreateCategory(_ context.Context, c model.VideoCategory) error {
	s.categories[c.ID] = c
	return nil
}

func (s videoStore) ListCategories(_ context.Context) ([]model.VideoCategory, error) {
	out := make([]model.VideoCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s videoStore) Create(_ context.Context, v model.Video) error {
	s.videos[v.ID] = v
	return nil
}

func (s videoStore) FindByID(_ context.Context, id string) (model.Video, error) {
	if v, ok := s.videos[id]; ok {
		return v, nil
	}
	return model.Video{}, model.ErrVideoNotFound
}

func (s videoStore) List(_ context.Context, f model.VideoFilter) ([]model.Video, error) {
	out := []model.Video{}
	for _, v := range s.videos {
		if !v.IsPublished {
			continue
		}
		if f.CategoryID != "" && (v.CategoryID == nil || *v.CategoryID != f.CategoryID) {
			continue
		}
		if f.SubjectID != "" && (v.SubjectID == nil || *v.SubjectID != f.SubjectID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s videoStore) Update(_ context.Context, v model.Video) error {
	if _, ok := s.videos[v.ID]; !ok {
		return model.ErrVideoNotFound
	}
	s.videos[v.ID] = v
	return nil
}

func (s videoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return model.ErrVideoNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s videoStore) IncrementViews(_ context.Context, id string) error {
	v, ok := s.videos[id]
	if !ok {
		return model.ErrVideoNotFound
	}
	v.ViewsCount++
	s.videos[id] = v
	return nil
}

type progressStore struct{ *memStore }

func (s progressStore) Upsert(_ context.Context, p model.VideoProgress) error {
	s.progress[p.UserID+"/"+p.VideoID] = p
	return nil
}

func (s progressStore) ListByUser(_ context.Context, userID string) ([]model.VideoProgress, error) {
	out := []model.VideoProgress{}
	for _, p := range s.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// TestStore

type testStore struct{ *memStore }

func (s testStore) Create(_ context.Context, t model.Test) error {
	s.tests[t.ID] = t
	return nil
}

func (s testStore) FindByID(_ context.Context, id string) (model.Test, error) {
	if t, ok := s.tests[id]; ok {
		return t, nil
	}
	return model.Test{}, model.ErrTestNotFound
}

func (s testStore) QuestionsByTest(_ context.Context, testID string) ([]model.TestQuestion, error) {
	if t, ok := s.tests[testID]; ok {
		return t.Questions, nil
	}
	return nil, model.ErrTestNotFound
}

func (s testStore) List(_ context.Context, f model.TestFilter) ([]model.Test, error) {
	out := []model.Test{}
	for _, t := range s.tests {
		if f.VideoID != "" && (t.VideoID == nil || *t.VideoID != f.VideoID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s testStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tests[id]; !ok {
		return model.ErrTestNotFound
	}
	delete(s.tests, id)
	return nil
}

func (s testStore) CreateResult(_ context.Context, res model.TestResult) error {
	s.results = append(s.results, res)
	return nil
}

func (s testStore) ResultsByUser(_ context.Context, userID string) ([]model.TestResult, error) {
	out := []model.TestResult{}
	for _, res := range s.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

type testEnv struct {
	server *httptest.Server
	store  *memStore
}

// newTestEnv spins up the real router and middleware over in-memory stores
// and seeds a superadmin.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	tokens := service.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	authService := service.NewAuthService(tokens, store, oauthStoreAdapter{store})
	require.NoError(t, authService.EnsureSuperadmin(context.Background(), "root", "bootstrap-secret", "root@example.com"))

	subjectService := service.NewSubjectService(subjectStore{store})
	teacherService := service.NewTeacherService(teacherStore{store}, store, subjectStore{store})
	videoService := service.NewVideoService(videoStore{store}, progressStore{store})
	testService := service.NewTestService(testStore{store})

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTAccessTTL:     time.Hour,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	appRouter := router.New(
		cfg,
		authMiddleware,
		handler.NewAuthHandler(authService, oauth.Registry{}),
		handler.NewUserHandler(authService),
		handler.NewSubjectHandler(subjectService),
		handler.NewTeacherHandler(teacherService),
		handler.NewVideoHandler(videoService),
		handler.NewTestHandler(testService),
	)

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: store}
}

// login returns the access token for the given credentials.
func (e *testEnv) login(t *testing.T, username string, password string) string {
	t.Helper()

	resp := e.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data model.TokenPair `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Data.AccessToken)
	return parsed.Data.AccessToken
}

func (e *testEnv) doJSON(t *testing.T, method string, path string, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.True(t, envelope.Success, "response was not successful: %s", raw)
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}
