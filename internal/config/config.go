// Package config loads tool settings from an INI file.
package config

import (
	"fmt"
	"strings"

	"gitgub.com/cam-per/cultures/cultures/bmd"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"gopkg.in/ini.v1"
)

type Archive struct {
	Path string `ini:"path"`
}

type Decode struct {
	Alpha   string `ini:"alpha"`
	Charset string `ini:"charset"`
}

type Export struct {
	Format string `ini:"format"`
}

type Config struct {
	Archive Archive `ini:"archive"`
	Decode  Decode  `ini:"decode"`
	Export  Export  `ini:"export"`
}

func Default() Config {
	return Config{
		Archive: Archive{Path: "data.lib"},
		Decode:  Decode{Alpha: "alpha", Charset: "windows-1252"},
		Export:  Export{Format: "png"},
	}
}

// Load overlays the file at path onto the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := file.MapTo(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := c.AlphaMode(); err != nil {
		return err
	}
	if _, err := Charset(c.Decode.Charset); err != nil {
		return err
	}
	switch strings.ToLower(c.Export.Format) {
	case "png", "bmp":
	default:
		return fmt.Errorf("config: export format %q", c.Export.Format)
	}
	return nil
}

// AlphaMode resolves decode.alpha.
func (c Config) AlphaMode() (bmd.AlphaMode, error) {
	return ParseAlpha(c.Decode.Alpha)
}

func ParseAlpha(name string) (bmd.AlphaMode, error) {
	switch strings.ToLower(name) {
	case "", "alpha", "file":
		return bmd.AlphaFromFile, nil
	case "ignore", "opaque":
		return bmd.AlphaIgnore, nil
	}
	return 0, fmt.Errorf("config: alpha mode %q", name)
}

// Charset resolves an IANA code page name; an empty name means
// windows-1252. UTF-8 yields a nil charmap, which the decoders treat as raw
// bytes. Multi-byte encodings are rejected.
func Charset(name string) (*charmap.Charmap, error) {
	if name == "" {
		return charmap.Windows1252, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("config: charset %q: %w", name, err)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok {
		return nil, fmt.Errorf("config: charset %q is not a single-byte code page", name)
	}
	return cm, nil
}
