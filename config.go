package pgmodel

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Config is the configuration of a Session.
type Config struct {
	// Logger receives log output. It may be nil in which case nothing is logged.
	Logger Logger

	// LogLevel is the minimum level that is passed to Logger. The zero value is treated as LogLevelInfo.
	LogLevel LogLevel

	// StrictRecords makes entity codecs reject records and field maps holding fields that are not declared in the
	// structure. By default such fields are silently left out of the encoded value.
	StrictRecords bool
}

// ParseConfigError occurs when a configuration string or environment variable cannot be parsed.
type ParseConfigError struct {
	ConfigString string
	msg          string
	err          error
}

func (e *ParseConfigError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("cannot parse %q: %s", e.ConfigString, e.msg)
	}
	return fmt.Sprintf("cannot parse %q: %s (%v)", e.ConfigString, e.msg, e.err)
}

func (e *ParseConfigError) Unwrap() error {
	return e.err
}

// ParseConfig builds a Config from a keyword/value string such as "log_level=debug strict_records=true". Settings
// that are not present in configString are read from the PGMODEL_LOG_LEVEL and PGMODEL_STRICT_RECORDS environment
// variables. Unknown keywords are an error. The Logger of the returned Config is nil.
func ParseConfig(configString string) (*Config, error) {
	settings := make(map[string]string)
	addEnvSettings(settings)

	if err := addKeywordValueSettings(settings, configString); err != nil {
		return nil, &ParseConfigError{ConfigString: configString, msg: "invalid keyword/value", err: err}
	}

	config := &Config{LogLevel: LogLevelInfo}

	for k, v := range settings {
		switch k {
		case "log_level":
			level, err := LogLevelFromString(strings.ToLower(v))
			if err != nil {
				return nil, &ParseConfigError{ConfigString: configString, msg: "invalid log_level", err: err}
			}
			config.LogLevel = level
		case "strict_records":
			strict, err := strconv.ParseBool(v)
			if err != nil {
				return nil, &ParseConfigError{ConfigString: configString, msg: "invalid strict_records", err: err}
			}
			config.StrictRecords = strict
		default:
			return nil, &ParseConfigError{ConfigString: configString, msg: fmt.Sprintf("unknown keyword %q", k)}
		}
	}

	return config, nil
}

func addEnvSettings(settings map[string]string) {
	nameMap := map[string]string{
		"PGMODEL_LOG_LEVEL":      "log_level",
		"PGMODEL_STRICT_RECORDS": "strict_records",
	}

	for envname, realname := range nameMap {
		value := os.Getenv(envname)
		if value != "" {
			settings[realname] = value
		}
	}
}

var keywordValueRegexp = regexp.MustCompile(`^([a-zA-Z_]+)=((?:"[^"]*")|(?:[^ ]*))$`)

func addKeywordValueSettings(settings map[string]string, s string) error {
	for _, part := range strings.Fields(s) {
		m := keywordValueRegexp.FindStringSubmatch(part)
		if m == nil {
			return fmt.Errorf("expected keyword=value, got %q", part)
		}
		settings[m[1]] = strings.Trim(m[2], `"`)
	}

	return nil
}
