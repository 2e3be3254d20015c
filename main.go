package main

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ty-larkin/illumine/framework/app"
	"github.com/ty-larkin/illumine/framework/config"
	"github.com/ty-larkin/illumine/framework/container"
	ghttp "github.com/ty-larkin/illumine/framework/http"
	"github.com/ty-larkin/illumine/framework/http/validation"
	"github.com/ty-larkin/illumine/framework/routing"
)

// Type keys the demo services are bound under.
var (
	mailerKey = container.TypeKey((*Mailer)(nil))
	repoKey   = container.TypeKey((*UserRepository)(nil))
)

func main() {
	application := app.New() // loads .env automatically

	registerServices(application)

	r := application.Router()

	// ── Basic routes ─────────────────────────────────────────────────────────

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		res := ghttp.NewResponse(w)
		res.Success(map[string]any{"message": "Welcome to Illumine!"})
	})

	// ── Route prefix (like Route::prefix('api')) ──────────────────────────────

	r.Prefix("/api/v1", func(api *routing.Router) {

		// GET /api/v1/users/{id} — dispatched through the container:
		// "users" resolves to the controller, {id} fills the id parameter.
		api.Action(http.MethodGet, "/users/{id}", "users@Show")

		// DELETE /api/v1/users/{id} — in local env the method binding
		// registered below answers instead of the real Destroy.
		api.Action(http.MethodDelete, "/users/{id}", "users@Destroy")

		// Plain functions work as actions too; Describe supplies the
		// parameter name reflection cannot see.
		api.Action(http.MethodGet, "/greet/{name}",
			container.Describe(greet, container.Param{Name: "name"}))

		// GET /api/v1/users?page=2
		api.Get("/users", listUsers(application))

		// POST /api/v1/users
		api.Post("/users", storeUser(application))
	})

	// ── Auth group with middleware ─────────────────────────────────────────────

	r.Group(func(protected *routing.Router) {
		protected.Middleware(AuthMiddleware)

		protected.Get("/profile", func(w http.ResponseWriter, req *http.Request) {
			res := ghttp.NewResponse(w)
			res.Success(map[string]any{"user": "authenticated"})
		})
	})

	application.Run()
}

// registerServices binds the demo services and controllers.
func registerServices(application *app.Application) {
	application.Singleton(repoKey, func(c *container.Container) (any, error) {
		return NewUserRepository(), nil
	})

	application.Singleton(mailerKey, func(c *container.Container) (any, error) {
		cfg := container.Resolve[*config.Config](c, "config")
		log := container.Resolve[*logrus.Logger](c, "log")
		return &Mailer{From: cfg.Mail.From, log: log.WithField("channel", "mail")}, nil
	})

	application.Singleton("users", func(c *container.Container) (any, error) {
		repo := container.Resolve[*UserRepository](c, repoKey)
		return &UserController{Repo: repo}, nil
	})

	// Go reflection cannot see parameter names, so route params declare them.
	application.DefineSignature("users@Show", container.Param{Name: "id"})
	application.DefineSignature("users@Destroy", container.Param{Name: "id"})

	// Laravel: $container->bindMethod('users@destroy', fn() => ...) —
	// short-circuits the real method, here to keep local deletes harmless.
	if application.IsLocal() {
		application.BindMethod("users@Destroy", func(c *container.Container, receiver any) (any, error) {
			return map[string]any{"dry_run": true}, nil
		})
	}
}

// listUsers pages through the user list. Query parameters are validated
// before use.
func listUsers(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request := ghttp.NewRequest(r)
		res := ghttp.NewResponse(w)

		if v := request.Validate(validation.Rules{"page": "sometimes|integer|gte:1"}); v.Fails() {
			res.ValidationError(v.Errors())
			return
		}

		repo := container.Resolve[*UserRepository](application.Container, repoKey)
		res.Success(map[string]any{
			"page":  request.Integer("page", 1),
			"users": repo.All(),
		})
	}
}

// storeUser validates the request body, stores the user, and dispatches the
// welcome email job.
func storeUser(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		request := ghttp.NewRequest(req)
		res := ghttp.NewResponse(w)

		// 1. Bind JSON body into a struct
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Age   string `json:"age"`
		}
		if err := request.Bind(&body); err != nil {
			res.Error(http.StatusBadRequest, err.Error())
			return
		}

		// 2. Validate — Laravel-style rules
		v := validation.Make(map[string]string{
			"name":  body.Name,
			"email": body.Email,
			"age":   body.Age,
		}, validation.Rules{
			"name":  "required|min:2|max:100",
			"email": "required|email",
			"age":   "required|numeric|gte:18",
		})

		if v.Fails() {
			// 3. Return 422 {"errors": {"field": ["msg"]}}
			res.ValidationError(v.Errors())
			return
		}

		// 4. Store and dispatch the welcome job through the bus
		repo := container.Resolve[*UserRepository](application.Container, repoKey)
		id := repo.Add(body.Name)

		if _, err := application.Bus().Dispatch(&SendWelcomeEmail{Address: body.Email}); err != nil {
			application.Log().WithError(err).Warn("welcome email failed")
		}

		// 5. Return 201 created
		res.Created(map[string]any{
			"id":    id,
			"name":  body.Name,
			"email": body.Email,
		})
	}
}

// greet is a function action: GET /greet/{name}.
func greet(name string) map[string]any {
	return map[string]any{"greeting": "Hello, " + name + "!"}
}

// AuthMiddleware is an example JWT/token guard.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := ghttp.NewRequest(r)
		res := ghttp.NewResponse(w)

		if req.BearerToken() == "" {
			res.Unauthorized()
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── Demo domain ──────────────────────────────────────────────────────────────

// UserController serves the /users routes. Resolved from the container under
// the "users" key.
type UserController struct {
	app.Controller
	Repo *UserRepository
}

func (u *UserController) Show(id string) (map[string]any, error) {
	name, ok := u.Repo.Find(id)
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return map[string]any{"id": id, "name": name}, nil
}

func (u *UserController) Destroy(id string, res *ghttp.Response) {
	u.Repo.Delete(id)
	res.NoContent()
}

// UserRepository is an in-memory user store.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]string{
		"1": "Alice",
		"2": "Bob",
	}}
}

func (r *UserRepository) Find(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.users[id]
	return name, ok
}

func (r *UserRepository) All() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.users))
	for id, name := range r.users {
		out[id] = name
	}
	return out
}

func (r *UserRepository) Add(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.users[id] = name
	return id
}

func (r *UserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// Mailer sends transactional mail. The demo logs instead of speaking SMTP.
type Mailer struct {
	From string
	log  logrus.FieldLogger
}

func (m *Mailer) Send(to, subject string) error {
	m.log.WithFields(logrus.Fields{"to": to, "from": m.From}).Info(subject)
	return nil
}

// SendWelcomeEmail greets a new user. Dispatch resolves the Mailer into
// Handle — Laravel: Bus::dispatch(new SendWelcomeEmail($user)).
type SendWelcomeEmail struct {
	Address string
}

func (j *SendWelcomeEmail) Handle(m *Mailer) error {
	return m.Send(j.Address, "Welcome aboard!")
}
