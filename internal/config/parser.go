package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gbabichev/screensnip/internal/style"
)

// Parse reads configuration in rc format: `key = value` pairs grouped
// under optional [section] headers. [style.NAME] sections define inline
// presets in the style file syntax.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var styleLines *strings.Builder
	var styleName string

	flushStyle := func() error {
		if styleLines == nil {
			return nil
		}
		s, err := style.Parse(strings.NewReader(styleLines.String()))
		if err != nil {
			return fmt.Errorf("error in section [style.%s]: %w", styleName, err)
		}
		if s.Name == "Default" {
			s.Name = styleName
		}
		cfg.Styles[styleName] = s
		styleLines = nil
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flushStyle(); err != nil {
				return nil, err
			}
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			if strings.HasPrefix(section, "style.") {
				styleName = strings.TrimPrefix(section, "style.")
				styleLines = &strings.Builder{}
			}
			continue
		}

		if styleLines != nil {
			styleLines.WriteString(line)
			styleLines.WriteString("\n")
			continue
		}

		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)

		var err error
		switch section {
		case "":
			err = setRootField(cfg, key, value)
		case "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := flushStyle(); err != nil {
		return nil, err
	}
	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "style":
		cfg.Style = value
	case "save_dir":
		cfg.SaveDir = value
	case "format":
		cfg.Format = strings.ToLower(value)
	case "jpeg_quality":
		q, err := strconv.Atoi(value)
		if err != nil || q < 1 || q > 100 {
			return fmt.Errorf("invalid jpeg_quality %q", value)
		}
		cfg.JPEGQuality = q
	case "capture_timeout_ms":
		ms, err := strconv.Atoi(value)
		if err != nil || ms <= 0 {
			return fmt.Errorf("invalid capture_timeout_ms %q", value)
		}
		cfg.CaptureTimeout = time.Duration(ms) * time.Millisecond
	case "shadow":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key shadow: %w", err)
		}
		cfg.Shadow = b
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "capture":
		n.Capture = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}
