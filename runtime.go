package headwater

import "os"

// Runtime abstracts the process environment the detection strategies
// consult. Production code uses the os-backed default; tests substitute
// their own lookups to simulate foreign environments.
type Runtime struct {
	LookupEnv   func(key string) (string, bool)
	Setenv      func(key, value string) error
	UserHomeDir func() (string, error)
}

func defaultRuntime() *Runtime {
	return &Runtime{
		LookupEnv:   os.LookupEnv,
		Setenv:      os.Setenv,
		UserHomeDir: os.UserHomeDir,
	}
}

func (rt *Runtime) getenv(key string) string {
	v, _ := rt.LookupEnv(key)
	return v
}
