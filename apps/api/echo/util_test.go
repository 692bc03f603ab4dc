package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/montree/apps/api/echo"
	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/storage/database/sqlboiler"
	"github.com/trezcool/montree/storage/database/sqlx"
	"github.com/trezcool/montree/tests"
)

const secretKey = "test-secret"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	app      echoapi.Server
	repos    curriculum.Repositories
	progress *progressStub
}

// progressStub can fail or hold progress writes of the wrapped repository.
type progressStub struct {
	curriculum.ProgressRepository
	err     error
	entered chan struct{}
	release chan struct{}
}

func (s *progressStub) UpsertStatuses(ctx context.Context, updates []curriculum.ProgressUpdate) (int, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	if s.err != nil {
		return 0, s.err
	}
	return s.ProgressRepository.UpsertStatuses(ctx, updates)
}

func setup(t *testing.T) fixture {
	// set up DB & repos
	db := testutil.OpenDB(t)
	xdb := sqlxrepos.NewDB(db, core.EngineSQLite)
	progress := &progressStub{ProgressRepository: boiledrepos.NewProgressRepository(db, core.EngineSQLite)}
	repos := curriculum.Repositories{
		Catalog:     sqlxrepos.NewCatalogRepository(xdb),
		Assignments: sqlxrepos.NewAssignmentRepository(xdb),
		Progress:    progress,
		Synonyms:    sqlxrepos.NewSynonymRepository(xdb),
	}

	// set up services
	svc, err := curriculum.NewService(repos, curriculum.Options{}, testutil.NopLogger{})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	// set up server
	app := echoapi.NewServer(&echoapi.Options{
		TestMode:       true,
		DisableReqLogs: true,
		SecretKey:      secretKey,
		Logger:         testutil.NopLogger{},
		CurriculumSvc:  svc,
	})
	return fixture{app: app, repos: repos, progress: progress}
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
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, scopes ...string) string {
	claims := echoapi.NewClaims("montree-test", "classroom-app", time.Hour, scopes...)
	token, err := echoapi.GenerateToken(claims, secretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
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
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v (body %s)", err, rec.Body.String())
	}
}
