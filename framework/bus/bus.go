package bus

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ty-larkin/illumine/framework/container"
	"github.com/ty-larkin/illumine/framework/logging"
)

// Bus is a synchronous command bus. Jobs run through the container's Call
// pipeline, so a job's Handle method receives its dependencies by injection —
// Laravel: Bus::dispatch(new SendWelcomeEmail($user)).
type Bus struct {
	app *container.Container
	log logrus.FieldLogger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger dispatches are traced on. Without it the bus
// logs nowhere.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bus) { b.log = log }
}

// New creates a Bus that dispatches through app.
func New(app *container.Container, opts ...Option) *Bus {
	b := &Bus{app: app, log: logging.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ── Dispatching ──────────────────────────────────────────────────────────────

// Dispatch invokes job.Handle now, resolving its parameters from the
// container. The job instance carries the command's data; Handle's
// parameters are its dependencies:
//
//	type SendWelcomeEmail struct{ Address string }
//	func (j *SendWelcomeEmail) Handle(m *Mailer) error { ... }
//
//	bus.Dispatch(&SendWelcomeEmail{Address: addr})
//
// Returns whatever Handle returned, mapped the way Call maps results.
func (b *Bus) Dispatch(job any) (any, error) {
	return b.run(container.TypeKey(job), []any{job, "Handle"}, nil)
}

// DispatchTo invokes an arbitrary Call target as a job, defaulting the
// method to Handle — Laravel: Bus::dispatch('App\Jobs\SendEmail@handle').
//
//	bus.DispatchTo("jobs.SendEmail", map[string]any{"address": addr})
func (b *Bus) DispatchTo(target any, params any) (any, error) {
	return b.run(jobName(target), target, params)
}

func (b *Bus) run(name string, target any, params any) (any, error) {
	log := b.log.WithFields(logrus.Fields{
		"job":    name,
		"job_id": uuid.NewString(),
	})
	log.Debug("dispatching job")

	out, err := b.app.CallDefault(target, params, "Handle")
	if err != nil {
		log.WithError(err).Warn("job failed")
		return nil, err
	}
	log.Debug("job handled")
	return out, nil
}

// jobName labels a dispatch for logging.
func jobName(target any) string {
	if s, ok := target.(string); ok {
		return s
	}
	return container.TypeKey(target)
}
