package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ty-larkin/illumine/framework/app"
	"github.com/ty-larkin/illumine/framework/container"
)

type greetingsController struct{}

func (g *greetingsController) Show(name string) map[string]any {
	return map[string]any{"greeting": "Hello, " + name + "!"}
}

type pingJob struct{}

func (j *pingJob) Handle() string { return "pong" }

type auditProvider struct {
	container.BaseProvider
	booted bool
}

func (p *auditProvider) Register(application *container.Container) {
	application.Singleton("audit", func(c *container.Container) (any, error) {
		return "audit-log", nil
	})
}

func (p *auditProvider) Boot(application *container.Container) { p.booted = true }

func TestNew_BindsCoreServices(t *testing.T) {
	application := app.New()

	for _, key := range []string{
		"config", "configuration",
		"log", "logger",
		"router", "view", "bus",
		"container",
	} {
		assert.True(t, application.Bound(key), "expected %q to be bound", key)
	}
}

func TestApplication_TypedAccessors(t *testing.T) {
	t.Setenv("APP_NAME", "Testapp")
	application := app.New()

	require.NotNil(t, application.Config())
	assert.Equal(t, "Testapp", application.Config().App.Name)
	assert.NotNil(t, application.Log())
	assert.NotNil(t, application.Router())
	assert.NotNil(t, application.Views())
	assert.NotNil(t, application.Bus())
}

func TestApplication_AliasesShareTheSingleton(t *testing.T) {
	application := app.New()

	log, err := application.Make("log")
	require.NoError(t, err)
	logger, err := application.Make("logger")
	require.NoError(t, err)
	assert.Same(t, log, logger)
}

func TestApplication_EnvironmentHelpers(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	application := app.New()

	assert.Equal(t, "testing", application.Environment())
	assert.True(t, application.IsTesting())
	assert.False(t, application.IsLocal())
	assert.False(t, application.IsProduction())
	assert.Equal(t, "0.1.0", application.Version())
}

func TestApplication_BootIsIdempotent(t *testing.T) {
	application := app.New()
	application.Boot()
	application.Boot()

	assert.True(t, application.Providers.Booted())
}

func TestApplication_RegisterCustomProvider(t *testing.T) {
	application := app.New()
	p := &auditProvider{}
	application.Register(p)
	application.Boot()

	assert.True(t, p.booted)
	got, err := application.Make("audit")
	require.NoError(t, err)
	assert.Equal(t, "audit-log", got)
}

func TestApplication_BusDispatchesJobs(t *testing.T) {
	application := app.New()

	out, err := application.Bus().Dispatch(&pingJob{})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

// End to end: a controller route dispatched through the booted application.
func TestApplication_ActionRouteDispatch(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	application := app.New()
	application.Boot()

	application.Singleton("greetings", func(c *container.Container) (any, error) {
		return &greetingsController{}, nil
	})
	application.DefineSignature("greetings@Show", container.Param{Name: "name"})

	r := application.Router()
	r.Action(http.MethodGet, "/greet/{name}", "greetings@Show")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/Taylor", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Hello, Taylor!", body.Data["greeting"])
}

func TestController_Helpers(t *testing.T) {
	var c app.Controller

	req := c.Request(httptest.NewRequest(http.MethodPost, "/users", nil))
	assert.Equal(t, http.MethodPost, req.Method())

	rec := httptest.NewRecorder()
	c.Response(rec).NoContent()
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
