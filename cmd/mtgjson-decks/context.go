package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ramonehamilton/mtgjson-decks/internal/config"
	"github.com/ramonehamilton/mtgjson-decks/internal/logging"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage"
)

var errNoDatabase = errors.New("no database configured (set paths.database or MTGJSON_DATABASE)")

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: w,
	})
}

// openStore opens the configured database. Callers close the returned
// service.
func (c *commandContext) openStore() (*storage.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Paths.Database) == "" {
		return nil, errNoDatabase
	}

	db, err := storage.Open(storage.DefaultConfig(cfg.Paths.Database))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return storage.NewService(db), nil
}
