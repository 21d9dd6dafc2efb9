package config

import (
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrDatabaseNotConfigured is returned when neither a URL, a DSN nor a host is set.
var ErrDatabaseNotConfigured = errors.New("database not configured")

// Configured reports whether enough information exists to open a connection.
func (c DatabaseRuntimeConfig) Configured() bool {
	if c.URL != "" || c.DSN != "" || c.Host != "" {
		return true
	}
	return c.Driver == DriverSQLite && c.Name != ""
}

// inferDriver guesses the driver from a SQLAlchemy style or plain database URL.
func inferDriver(rawURL string) string {
	scheme := urlScheme(rawURL)
	switch {
	case scheme == "":
		if strings.HasPrefix(rawURL, "file:") || strings.HasSuffix(rawURL, ".db") {
			return DriverSQLite
		}
		return DriverMySQL
	case strings.HasPrefix(scheme, "postgres"):
		return DriverPostgres
	case strings.HasPrefix(scheme, "sqlite"), scheme == "file":
		return DriverSQLite
	default:
		return DriverMySQL
	}
}

// urlScheme returns the scheme without any "+dialect" suffix, e.g. "postgresql+psycopg2" -> "postgresql".
func urlScheme(rawURL string) string {
	idx := strings.Index(rawURL, "://")
	if idx <= 0 {
		if strings.HasPrefix(rawURL, "file:") {
			return "file"
		}
		return ""
	}
	scheme := strings.ToLower(rawURL[:idx])
	if plus := strings.Index(scheme, "+"); plus >= 0 {
		scheme = scheme[:plus]
	}
	return scheme
}

// DSNValue returns the driver specific connection string.
func (c DatabaseRuntimeConfig) DSNValue() (string, error) {
	if !c.Configured() {
		return "", ErrDatabaseNotConfigured
	}
	if c.DSN != "" {
		return c.DSN, nil
	}

	switch c.Driver {
	case DriverPostgres:
		return c.postgresDSN()
	case DriverSQLite:
		return c.sqliteDSN(), nil
	default:
		return c.mysqlDSN()
	}
}

func (c DatabaseRuntimeConfig) postgresDSN() (string, error) {
	if c.URL != "" {
		idx := strings.Index(c.URL, "://")
		if idx < 0 {
			return "", fmt.Errorf("invalid postgres url %q", c.URL)
		}
		return "postgres" + c.URL[idx:], nil
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		u.User = neturl.UserPassword(c.User, c.Password)
	}
	query := neturl.Values{}
	for k, v := range c.Params {
		query.Set(k, v)
	}
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func (c DatabaseRuntimeConfig) sqliteDSN() string {
	if c.URL == "" {
		return c.Name
	}
	if strings.HasPrefix(c.URL, "file:") {
		return c.URL
	}
	idx := strings.Index(c.URL, "://")
	if idx < 0 {
		return c.URL
	}
	// sqlite:///relative.db -> relative.db, sqlite:////abs/path.db -> /abs/path.db
	return strings.TrimPrefix(c.URL[idx+3:], "/")
}

func (c DatabaseRuntimeConfig) mysqlDSN() (string, error) {
	mc := mysql.NewConfig()
	mc.ParseTime = true
	mc.Params = map[string]string{}

	if c.URL != "" {
		if !strings.Contains(c.URL, "://") {
			// Already a go-sql-driver DSN such as user:pass@tcp(host:3306)/db.
			if _, err := mysql.ParseDSN(c.URL); err != nil {
				return "", fmt.Errorf("invalid mysql dsn: %w", err)
			}
			return c.URL, nil
		}
		parsed, err := neturl.Parse(c.URL)
		if err != nil || parsed.Host == "" {
			return "", fmt.Errorf("invalid mysql url %q", c.URL)
		}
		mc.Net = "tcp"
		mc.Addr = parsed.Host
		if parsed.Port() == "" {
			mc.Addr = net.JoinHostPort(parsed.Hostname(), strconv.Itoa(defaultDBPort))
		}
		if parsed.User != nil {
			mc.User = parsed.User.Username()
			mc.Passwd, _ = parsed.User.Password()
		}
		mc.DBName = strings.TrimPrefix(parsed.Path, "/")
		for key, values := range parsed.Query() {
			if len(values) > 0 {
				mc.Params[key] = values[0]
			}
		}
	} else {
		port := c.Port
		if port == 0 {
			port = defaultDBPort
		}
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		mc.User = c.User
		mc.Passwd = c.Password
		mc.DBName = c.Name
	}

	for key, value := range c.Params {
		mc.Params[key] = value
	}
	if _, ok := mc.Params["charset"]; !ok && c.Charset != "" {
		mc.Params["charset"] = c.Charset
	}
	return mc.FormatDSN(), nil
}

// URLValue returns the Redis connection URL.
func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(c.Username, c.Password)
		} else {
			u.User = neturl.User(c.Username)
		}
	} else if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
