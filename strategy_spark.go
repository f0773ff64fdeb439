package headwater

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sparkJDBCKey is the session property holding the pre-built warehouse
// locator on Databricks-backed Spark clusters.
const sparkJDBCKey = "spark.databricks.jdbc.url"

// sparkStrategy picks up credentials from a distributed Spark/Databricks
// session. The runtime is considered present when the Spark installation
// markers are set, and active when the session configuration declares a
// JDBC locator.
type sparkStrategy struct{}

func (sparkStrategy) name() string { return "spark-session" }

func (s sparkStrategy) probe(rt *Runtime) capability {
	if rt.getenv("SPARK_HOME") == "" && rt.getenv("DATABRICKS_RUNTIME_VERSION") == "" {
		return capAbsent
	}
	path := sparkConfPath(rt)
	if path == "" {
		return capInactive
	}
	if _, err := os.Stat(path); err != nil {
		return capInactive
	}
	url, err := sparkConfValue(path, sparkJDBCKey)
	if err != nil {
		// The session conf exists but cannot be read. That is a broken
		// active context, not a missing one; commit so the failure
		// surfaces from settings().
		return capActive
	}
	if url == "" {
		return capInactive
	}
	return capActive
}

func (s sparkStrategy) settings(_ context.Context, rt *Runtime) (*Settings, error) {
	path := sparkConfPath(rt)
	url, err := sparkConfValue(path, sparkJDBCKey)
	if err != nil {
		return nil, fmt.Errorf("reading spark session conf %s: %w", path, err)
	}
	if url == "" {
		return nil, fmt.Errorf("spark session conf %s no longer declares %s", path, sparkJDBCKey)
	}
	out := NewSettings()
	out.Set(KeyBackendKind, string(KindDatabricks))
	out.Set(KeyLocatorURL, url)
	return out, nil
}

// sparkConfPath locates spark-defaults.conf via SPARK_CONF_DIR, falling
// back to the conf directory under SPARK_HOME.
func sparkConfPath(rt *Runtime) string {
	if dir := rt.getenv("SPARK_CONF_DIR"); dir != "" {
		return filepath.Join(dir, "spark-defaults.conf")
	}
	if home := rt.getenv("SPARK_HOME"); home != "" {
		return filepath.Join(home, "conf", "spark-defaults.conf")
	}
	return ""
}

// sparkConfValue scans a spark-defaults.conf style file (whitespace
// separated key/value lines, # comments) for a single property.
func sparkConfValue(path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == key {
			return strings.Join(fields[1:], " "), nil
		}
	}
	return "", scanner.Err()
}
