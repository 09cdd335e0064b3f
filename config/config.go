// Package config loads hackvm project files.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/codegen"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config describes how a program is translated. Zero values mean the
// defaults of the codegen and api packages.
type Config struct {
	Sources   []string `yaml:"sources"`
	Output    string   `yaml:"output"`
	Bootstrap string   `yaml:"bootstrap"`
	Comments  *bool    `yaml:"comments"`
	Entry     string   `yaml:"entry"`
	StackBase *int     `yaml:"stack_base"`
}

// Load reads a YAML project file. Relative sources and output are resolved
// against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config.Load")
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config.Load %s", path)
	}

	dir := filepath.Dir(path)
	for i, s := range c.Sources {
		c.Sources[i] = resolve(dir, s)
	}
	if c.Output != "" {
		c.Output = resolve(dir, c.Output)
	}

	return c, nil
}

// Parse decodes a project file and validates it. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	c := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks the values that the builders would reject.
func (c *Config) Validate() error {
	if c.Bootstrap != "" {
		if _, err := api.ParseBootstrapMode(c.Bootstrap); err != nil {
			return errors.Wrap(ErrInvalid, err.Error())
		}
	}

	if c.StackBase != nil && (*c.StackBase < 0 || *c.StackBase > codegen.MaxConstant) {
		return errors.Wrapf(ErrInvalid, "stack_base %d out of range", *c.StackBase)
	}

	for _, s := range c.Sources {
		if s == "" {
			return errors.Wrap(ErrInvalid, "empty source path")
		}
	}

	return nil
}

// Writer returns the code generator settings.
func (c *Config) Writer() codegen.Builder {
	b := codegen.NewBuilder()

	if c.Comments != nil {
		b = b.WithComments(*c.Comments)
	}
	if c.Entry != "" {
		b = b.WithEntryPoint(c.Entry)
	}
	if c.StackBase != nil {
		b = b.WithStackBase(*c.StackBase)
	}

	return b
}

// Driver returns the driver settings. The configuration must be valid.
func (c *Config) Driver() api.DriverBuilder {
	b := api.DriverBuilder{}.WithWriterBuilder(c.Writer())

	if c.Bootstrap != "" {
		mode, err := api.ParseBootstrapMode(c.Bootstrap)
		if err != nil {
			panic(err)
		}
		b = b.WithBootstrap(mode)
	}

	return b
}

// OutputPath returns the configured output, or the name derived from the
// sources.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return api.DefaultOutputPath(c.Sources)
}
