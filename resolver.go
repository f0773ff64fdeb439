package headwater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/headwaterdb/headwater/internal/logger"
)

// DefaultSecretSheet is the notebook secret sheet consulted when the
// caller does not name one.
const DefaultSecretSheet = "DatawarehouseUP"

// Resolver runs the detection chain. The zero value is not usable; build
// one with New.
type Resolver struct {
	sqliteFile  string
	envFile     string
	envFileSet  bool
	configFiles []string
	filesSet    bool
	sheet       string
	verbose     bool
	out         io.Writer

	prov       Provisioner
	rt         *Runtime
	strategies []strategy
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSQLiteFile forces a file-backed store at the given path, bypassing
// all detection. This is an explicit request: failures are hard errors.
func WithSQLiteFile(path string) Option {
	return func(r *Resolver) { r.sqliteFile = path }
}

// WithEnvFile overrides the dotenv path consulted during auto-detection
// (default ".env"). Passing the empty string disables the env file
// strategy entirely. A caller-supplied path makes that strategy explicit,
// so its provisioning failures propagate instead of falling through.
func WithEnvFile(path string) Option {
	return func(r *Resolver) {
		r.envFile = path
		r.envFileSet = true
	}
}

// WithConfigFiles supplies an ordered list of dotenv files to load
// instead of running detection. Later files override earlier ones key by
// key. The list is explicit: every failure is a hard error.
func WithConfigFiles(paths []string) Option {
	return func(r *Resolver) {
		r.configFiles = paths
		r.filesSet = true
	}
}

// WithSecretSheet names the notebook secret sheet to consult.
func WithSecretSheet(name string) Option {
	return func(r *Resolver) { r.sheet = name }
}

// WithVerbose enables one-line, credential-redacted traces of which
// source was chosen and which locator was attempted.
func WithVerbose(v bool) Option {
	return func(r *Resolver) { r.verbose = v }
}

// WithOutput redirects verbose traces (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(r *Resolver) { r.out = w }
}

// WithProvisioner substitutes the connection provisioner. Mostly useful
// in tests that need to observe or fake liveness probes.
func WithProvisioner(p Provisioner) Option {
	return func(r *Resolver) { r.prov = p }
}

// New builds a Resolver with the given options applied over defaults.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		envFile: ".env",
		sheet:   DefaultSecretSheet,
		out:     os.Stdout,
		prov:    sqlProvisioner{},
		rt:      defaultRuntime(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategies == nil {
		r.strategies = []strategy{
			sparkStrategy{},
			secretSheetStrategy{sheet: r.sheet},
			envFileStrategy{path: r.envFile, explicit: r.envFileSet},
			testDBStrategy{},
		}
	}
	return r
}

// Resolve detects the best available connection source in priority order
// and returns a live, liveness-checked handle.
//
// Explicit inputs (a SQLite override, a config file list, a
// caller-supplied env path) make every failure a hard error. On the
// auto-detect path, a source that fails to connect is logged and the
// chain falls through to the next source, ending at the file-backed
// fallback which only needs filesystem write access.
func (r *Resolver) Resolve(ctx context.Context) (*Handle, error) {
	if r.sqliteFile != "" {
		s, err := sqliteSettings(r.rt, r.sqliteFile)
		if err != nil {
			return nil, err
		}
		r.logf("using SQLite database: %s", s.Get(KeyDatabase))
		return r.provision(ctx, s)
	}

	if r.filesSet {
		s, err := loadConfigFiles(r.rt, r.configFiles)
		if err != nil {
			return nil, err
		}
		r.logf("using credentials from %d config file(s)", len(r.configFiles))
		return r.provision(ctx, s)
	}

	var lastErr error
	for _, st := range r.strategies {
		state := st.probe(r.rt)
		logger.Debug("probed connection source", "strategy", st.name(), "capability", state.String())
		if state != capActive {
			continue
		}

		s, err := st.settings(ctx, r.rt)
		if err != nil {
			return nil, asHardError(st, err)
		}

		explicit := r.isExplicit(st)
		h, err := r.provision(ctx, s)
		if err != nil {
			// Only a liveness failure may fall through, and only on the
			// implicit path. Builder errors (incomplete credentials) are
			// hard everywhere: the source was there, just broken.
			var provErr *ProvisionError
			if explicit || !errors.As(err, &provErr) {
				return nil, err
			}
			r.logf("%s connection failed, trying next source: %v", st.name(), err)
			lastErr = err
			continue
		}
		r.logf("using %s credentials", st.name())
		return h, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no connection source succeeded: %w", lastErr)
	}
	return nil, errors.New("no connection source available")
}

// ResolveSettings detects or loads configuration and returns the settings
// container. Provisioning is still attempted: on success the handle is
// attached, on an implicit-path failure the error message is captured
// into Settings.Err and the settings are returned without error.
func (r *Resolver) ResolveSettings(ctx context.Context) (*Settings, error) {
	explicit := r.filesSet || r.sqliteFile != ""

	var s *Settings
	var err error
	switch {
	case r.filesSet:
		s, err = loadConfigFiles(r.rt, r.configFiles)
		if err != nil {
			return nil, err
		}
		r.logf("loaded %d config file(s)", len(r.configFiles))
	case r.sqliteFile != "":
		s, err = sqliteSettings(r.rt, r.sqliteFile)
		if err != nil {
			return nil, err
		}
	default:
		s, err = r.detect(ctx)
		if err != nil {
			return nil, err
		}
	}

	loc, err := BuildLocator(s)
	if err != nil {
		return nil, err
	}
	r.logf("attempting to connect with %s", loc.Redacted())

	h, err := r.prov.Provision(ctx, loc)
	if err != nil {
		if explicit {
			return nil, err
		}
		s.Err = err.Error()
		r.logf("connection failed: %v", err)
		return s, nil
	}
	s.Handle = h
	r.logf("database connection successful")
	return s, nil
}

// detect runs the chain up to the first active strategy and returns its
// settings. The terminal test-database strategy guarantees termination.
func (r *Resolver) detect(ctx context.Context) (*Settings, error) {
	for _, st := range r.strategies {
		state := st.probe(r.rt)
		logger.Debug("probed connection source", "strategy", st.name(), "capability", state.String())
		if state != capActive {
			continue
		}
		s, err := st.settings(ctx, r.rt)
		if err != nil {
			return nil, asHardError(st, err)
		}
		r.logf("using %s credentials", st.name())
		return s, nil
	}
	return nil, errors.New("no connection source available")
}

// provision builds the locator and materializes a handle, attaching it
// to the settings. Policy (propagate vs capture) is the caller's job.
func (r *Resolver) provision(ctx context.Context, s *Settings) (*Handle, error) {
	loc, err := BuildLocator(s)
	if err != nil {
		return nil, err
	}
	r.logf("attempting to connect with %s", loc.Redacted())

	h, err := r.prov.Provision(ctx, loc)
	if err != nil {
		return nil, err
	}
	s.Handle = h
	return h, nil
}

// isExplicit reports whether the strategy carries caller-expressed
// certainty, which hardens its provisioning failures.
func (r *Resolver) isExplicit(st strategy) bool {
	if ef, ok := st.(envFileStrategy); ok {
		return ef.explicit
	}
	return false
}

// asHardError wraps a committed strategy's extraction failure, keeping
// already-typed configuration errors intact.
func asHardError(st strategy, err error) error {
	var cfgErr *ConfigFileError
	var credErr *IncompleteCredentialsError
	if errors.As(err, &cfgErr) || errors.As(err, &credErr) {
		return err
	}
	return &StrategyError{Strategy: st.name(), Err: err}
}

func (r *Resolver) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Debug(msg)
	if r.verbose {
		fmt.Fprintf(r.out, "[headwater] %s\n", msg)
	}
}

// Resolve runs detection with a one-off Resolver.
func Resolve(ctx context.Context, opts ...Option) (*Handle, error) {
	return New(opts...).Resolve(ctx)
}

// ResolveSettings loads or detects configuration with a one-off Resolver.
func ResolveSettings(ctx context.Context, opts ...Option) (*Settings, error) {
	return New(opts...).ResolveSettings(ctx)
}
