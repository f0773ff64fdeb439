package headwater

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStrategy records probe and settings calls so tests can assert what
// the chain consulted and in what state.
type fakeStrategy struct {
	id            string
	state         capability
	out           *Settings
	err           error
	probeCalls    int
	settingsCalls int
}

func (f *fakeStrategy) name() string { return f.id }

func (f *fakeStrategy) probe(*Runtime) capability {
	f.probeCalls++
	return f.state
}

func (f *fakeStrategy) settings(context.Context, *Runtime) (*Settings, error) {
	f.settingsCalls++
	return f.out, f.err
}

// fakeProvisioner counts liveness attempts and can fail selectively by
// locator.
type fakeProvisioner struct {
	calls    int
	locators []Locator
	fail     func(Locator) error
}

func (p *fakeProvisioner) Provision(_ context.Context, loc Locator) (*Handle, error) {
	p.calls++
	p.locators = append(p.locators, loc)
	if p.fail != nil {
		if err := p.fail(loc); err != nil {
			return nil, &ProvisionError{Locator: loc.Redacted(), Err: err}
		}
	}
	return &Handle{kind: loc.Kind, locator: loc.Redacted()}, nil
}

func newChainResolver(t *testing.T, prov Provisioner, sts []strategy, opts ...Option) *Resolver {
	t.Helper()
	r := New(append(opts, WithProvisioner(prov))...)
	r.rt = newTestRuntime(nil, t.TempDir())
	if sts != nil {
		r.strategies = sts
	}
	return r
}

func TestResolveSQLiteOverrideSkipsDetection(t *testing.T) {
	prov := &fakeProvisioner{}
	probed := &fakeStrategy{id: "never", state: capActive, out: fullSettings(KindPostgreSQL)}
	dbPath := filepath.Join(t.TempDir(), "override.db")

	r := newChainResolver(t, prov, []strategy{probed}, WithSQLiteFile(dbPath))

	h, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindSQLite, h.Kind())

	// The override bypasses the chain entirely.
	assert.Zero(t, probed.probeCalls)
	assert.Equal(t, 1, prov.calls)
	assert.Equal(t, "sqlite3:///"+dbPath, prov.locators[0].URL)
}

func TestResolveSQLiteOverrideFailureIsHard(t *testing.T) {
	prov := &fakeProvisioner{fail: func(Locator) error { return errors.New("locked") }}
	fallback := &fakeStrategy{id: "fallback", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{fallback},
		WithSQLiteFile(filepath.Join(t.TempDir(), "x.db")))

	_, err := r.Resolve(context.Background())
	var provErr *ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Zero(t, fallback.probeCalls)
}

func TestResolveSkipsNonActiveStrategies(t *testing.T) {
	prov := &fakeProvisioner{}
	absent := &fakeStrategy{id: "absent", state: capAbsent}
	inactive := &fakeStrategy{id: "inactive", state: capInactive}
	active := &fakeStrategy{id: "active", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{absent, inactive, active})

	h, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindPostgreSQL, h.Kind())

	// Non-active strategies are probed but never asked for settings.
	assert.Equal(t, 1, absent.probeCalls)
	assert.Equal(t, 1, inactive.probeCalls)
	assert.Zero(t, absent.settingsCalls)
	assert.Zero(t, inactive.settingsCalls)
	assert.Equal(t, 1, active.settingsCalls)
}

func TestResolveExactlyOneLivenessProbe(t *testing.T) {
	prov := &fakeProvisioner{}
	active := &fakeStrategy{id: "active", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{active})

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, prov.calls)
}

func TestResolveImplicitFailureFallsThrough(t *testing.T) {
	first := fullSettings(KindPostgreSQL)
	second := NewSettings()
	second.Set(KeyBackendKind, string(KindSQLite))
	second.Set(KeyDatabase, "/tmp/fallback.db")

	prov := &fakeProvisioner{fail: func(loc Locator) error {
		if loc.Kind == KindPostgreSQL {
			return errors.New("connection refused")
		}
		return nil
	}}
	a := &fakeStrategy{id: "a", state: capActive, out: first}
	b := &fakeStrategy{id: "b", state: capActive, out: second}

	var trace bytes.Buffer
	r := newChainResolver(t, prov, []strategy{a, b}, WithVerbose(true), WithOutput(&trace))

	h, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindSQLite, h.Kind())
	assert.Equal(t, 2, prov.calls)
	assert.Contains(t, trace.String(), "trying next source")
}

func TestResolveExplicitEnvFileFailureIsHard(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "custom.env",
		"BACKEND_KIND=POSTGRESQL\nUSERNAME=u\nPASSWORD=p\nHOST=h\nPORT=5432\nDATABASE=d\n")

	prov := &fakeProvisioner{fail: func(Locator) error { return errors.New("refused") }}
	next := &fakeStrategy{id: "next", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov,
		[]strategy{envFileStrategy{path: f, explicit: true}, next})

	_, err := r.Resolve(context.Background())
	var provErr *ProvisionError
	require.ErrorAs(t, err, &provErr)

	// A caller-named env file does not fall through.
	assert.Zero(t, next.probeCalls)
	assert.Equal(t, 1, prov.calls)
}

func TestResolveImplicitIncompleteEnvFileIsHard(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, ".env", "USERNAME=alice\n")

	prov := &fakeProvisioner{}
	next := &fakeStrategy{id: "next", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{envFileStrategy{path: f}, next})

	// A detected .env that names only a username is broken, not absent:
	// the chain must stop, not pretend the file was never there.
	_, err := r.Resolve(context.Background())
	var credErr *IncompleteCredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Missing, KeyPassword)
	assert.Zero(t, next.probeCalls)
	assert.Zero(t, prov.calls)
}

func TestResolveCommittedExtractionFailureIsHard(t *testing.T) {
	prov := &fakeProvisioner{}
	broken := &fakeStrategy{id: "broken", state: capActive, err: errors.New("unreadable")}
	next := &fakeStrategy{id: "next", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{broken, next})

	_, err := r.Resolve(context.Background())
	var stratErr *StrategyError
	require.ErrorAs(t, err, &stratErr)
	assert.Equal(t, "broken", stratErr.Strategy)
	assert.Zero(t, next.probeCalls)
	assert.Zero(t, prov.calls)
}

func TestResolveConfigFilesMissingIsHard(t *testing.T) {
	prov := &fakeProvisioner{}
	r := newChainResolver(t, prov, nil,
		WithConfigFiles([]string{"/nonexistent/a.env"}))

	_, err := r.Resolve(context.Background())
	var cfgErr *ConfigFileError
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, prov.calls)
}

func TestResolveConfigFilesConnects(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "base.env",
		"BACKEND_KIND=POSTGRESQL\nUSERNAME=u\nPASSWORD=p\nHOST=h\nPORT=5432\nDATABASE=base\n")
	f2 := writeFile(t, dir, "override.env", "DATABASE=override\n")

	prov := &fakeProvisioner{}
	r := newChainResolver(t, prov, nil, WithConfigFiles([]string{f1, f2}))

	h, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindPostgreSQL, h.Kind())
	assert.Equal(t, "postgres://u:p@h:5432/override", prov.locators[0].URL)
}

func TestResolveSettingsCapturesImplicitFailure(t *testing.T) {
	prov := &fakeProvisioner{fail: func(Locator) error { return errors.New("refused") }}
	active := &fakeStrategy{id: "active", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{active})

	s, err := r.ResolveSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Nil(t, s.Handle)
	assert.Contains(t, s.Err, "refused")
	assert.Equal(t, "u", s.Get(KeyUsername))
}

func TestResolveSettingsAttachesHandle(t *testing.T) {
	prov := &fakeProvisioner{}
	active := &fakeStrategy{id: "active", state: capActive, out: fullSettings(KindPostgreSQL)}

	r := newChainResolver(t, prov, []strategy{active})

	s, err := r.ResolveSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.Handle)
	assert.Empty(t, s.Err)
	assert.Equal(t, KindPostgreSQL, s.Handle.Kind())
}

func TestResolveSettingsExplicitFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "creds.env",
		"BACKEND_KIND=POSTGRESQL\nUSERNAME=u\nPASSWORD=p\nHOST=h\nPORT=5432\nDATABASE=d\n")

	prov := &fakeProvisioner{fail: func(Locator) error { return errors.New("refused") }}
	r := newChainResolver(t, prov, nil, WithConfigFiles([]string{f}))

	_, err := r.ResolveSettings(context.Background())
	var provErr *ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.NotContains(t, provErr.Locator, ":p@")
}

func TestResolveVerboseRedactsLocator(t *testing.T) {
	prov := &fakeProvisioner{}
	active := &fakeStrategy{id: "active", state: capActive, out: fullSettings(KindPostgreSQL)}

	var trace bytes.Buffer
	r := newChainResolver(t, prov, []strategy{active}, WithVerbose(true), WithOutput(&trace))

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "postgres://...@h:5432/d")
	assert.NotContains(t, trace.String(), ":p@")
}

func TestSQLiteSettingsIdempotent(t *testing.T) {
	rt := newTestRuntime(nil, t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s1, err := sqliteSettings(rt, path)
	require.NoError(t, err)
	s2, err := sqliteSettings(rt, path)
	require.NoError(t, err)

	assert.Equal(t, s1.Get(KeyDatabase), s2.Get(KeyDatabase))
	assert.Equal(t, KindSQLite, s1.Kind())
}
