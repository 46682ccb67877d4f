// Package config loads the TOML file describing how an Index should be
// built and operated: bit block size, chunk size and log level,
// decoded with BurntSushi/toml. Load does not validate the values; an
// invalid chunk or block size is rejected when the options reach index.
// The sparse-fetch batch size used when reading flushed chunks back is a
// fixed constant, not something this file can override.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/uccidibuti/bitrush-index/index"
	"github.com/uccidibuti/bitrush-index/internal/xlog"
)

// Config is the on-disk shape of a bitrush-index configuration file.
type Config struct {
	BitBlockSize uint   `toml:"bit_block_size"`
	ChunkSize    uint64 `toml:"chunk_size"`
	LogLevel     string `toml:"log_level"`
}

// Default returns the configuration DefaultOptions would pick for a
// value of width bits, with logging at info level.
func Default(bits uint) Config {
	switch bits {
	case 8:
		return Config{BitBlockSize: 8, ChunkSize: uint64(index.Chunk32M), LogLevel: "info"}
	default:
		return Config{BitBlockSize: 16, ChunkSize: uint64(index.Chunk16M), LogLevel: "info"}
	}
}

// Load decodes a Config from the TOML file at path.
func Load(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save encodes c as TOML to the file at path, creating or truncating it.
func Save(path string, c Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// BuildOptions converts c to an index.BuildOptions.
func (c Config) BuildOptions() index.BuildOptions {
	return index.BuildOptions{BitBlockSize: c.BitBlockSize, Chunk: index.ChunkSize(c.ChunkSize)}
}

// Level parses c's LogLevel into an xlog.Level, defaulting to Info on an
// empty or unrecognized value.
func (c Config) Level() xlog.Level {
	switch c.LogLevel {
	case "trace":
		return xlog.LevelTrace
	case "debug":
		return xlog.LevelDebug
	case "warn":
		return xlog.LevelWarn
	case "error":
		return xlog.LevelError
	case "crit":
		return xlog.LevelCrit
	default:
		return xlog.LevelInfo
	}
}
