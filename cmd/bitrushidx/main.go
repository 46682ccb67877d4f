// Command bitrushidx is a thin CLI wrapper around the index package: it
// exists to create/append/query/inspect a uint64 storage-mode index from
// a shell, not to be a feature-complete ingestion tool. Non-goal per the
// library's scope; kept deliberately small.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/uccidibuti/bitrush-index/config"
	"github.com/uccidibuti/bitrush-index/index"
	"github.com/uccidibuti/bitrush-index/internal/xlog"
	"github.com/uccidibuti/bitrush-index/ozbc"
	"github.com/uccidibuti/bitrush-index/value"
)

func main() {
	app := &cli.App{
		Name:  "bitrushidx",
		Usage: "build and query an on-disk bitmap equality index of uint64 values",
		Commands: []*cli.Command{
			createCmd,
			appendCmd,
			queryCmd,
			queryFlushedCmd,
			statsCmd,
			benchCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var dirFlag = &cli.StringFlag{Name: "dir", Required: true, Usage: "index directory"}

var createCmd = &cli.Command{
	Name:  "create",
	Usage: "create a new storage-mode index",
	Flags: []cli.Flag{
		dirFlag,
		&cli.UintFlag{Name: "bit-block-size", Value: 16},
		&cli.Uint64Flag{Name: "chunk-size", Value: uint64(index.Chunk16M)},
	},
	Action: func(c *cli.Context) error {
		opts := index.BuildOptions{
			BitBlockSize: uint(c.Uint("bit-block-size")),
			Chunk:        index.ChunkSize(c.Uint64("chunk-size")),
		}
		idx, err := index.CreateStorage[value.Uint64](c.String("dir"), opts, ozbc.New)
		if err != nil {
			return err
		}
		defer idx.Close()
		return config.Save(configPath(c.String("dir")), config.Config{
			BitBlockSize: opts.BitBlockSize,
			ChunkSize:    uint64(opts.Chunk),
			LogLevel:     "info",
		})
	},
}

var appendCmd = &cli.Command{
	Name:  "append",
	Usage: "append values read one-per-line from stdin (or --value) to the index",
	Flags: []cli.Flag{
		dirFlag,
		&cli.Uint64Flag{Name: "value", Usage: "append a single value instead of reading stdin"},
	},
	Action: func(c *cli.Context) error {
		idx, closeIdx, err := openIndex(c.String("dir"))
		if err != nil {
			return err
		}
		defer closeIdx()

		if c.IsSet("value") {
			if err := idx.Append(value.Uint64(c.Uint64("value"))); err != nil {
				return err
			}
			return idx.Flush()
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			n, err := strconv.ParseUint(scanner.Text(), 10, 64)
			if err != nil {
				return fmt.Errorf("parse %q: %w", scanner.Text(), err)
			}
			if err := idx.Append(value.Uint64(n)); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		return idx.Flush()
	},
}

var queryCmd = &cli.Command{
	Name:  "query",
	Usage: "print every append position equal to --value",
	Flags: []cli.Flag{
		dirFlag,
		&cli.Uint64Flag{Name: "value", Required: true},
		&cli.Uint64Flag{Name: "start"},
		&cli.Uint64Flag{Name: "end"},
	},
	Action: func(c *cli.Context) error {
		idx, closeIdx, err := openIndex(c.String("dir"))
		if err != nil {
			return err
		}
		defer closeIdx()

		var start, end *uint64
		if c.IsSet("start") {
			v := c.Uint64("start")
			start = &v
		}
		if c.IsSet("end") {
			v := c.Uint64("end")
			end = &v
		}
		positions, err := idx.Query(value.Uint64(c.Uint64("value")), start, end)
		if err != nil {
			return err
		}
		for _, p := range positions {
			fmt.Println(p)
		}
		return nil
	},
}

var queryFlushedCmd = &cli.Command{
	Name:  "query-flushed",
	Usage: "print every append position equal to --value among already-flushed chunks only, without opening a full index",
	Flags: []cli.Flag{
		dirFlag,
		&cli.Uint64Flag{Name: "value", Required: true},
		&cli.Uint64Flag{Name: "start"},
		&cli.Uint64Flag{Name: "end"},
	},
	Action: func(c *cli.Context) error {
		handle, err := index.OpenStorageHandle(c.String("dir"))
		if err != nil {
			return err
		}
		defer handle.Close()

		var start, end *uint64
		if c.IsSet("start") {
			v := c.Uint64("start")
			start = &v
		}
		if c.IsSet("end") {
			v := c.Uint64("end")
			end = &v
		}
		positions, err := index.QueryFlushedOnly(handle, value.Uint64(c.Uint64("value")), start, end, ozbc.New)
		if err != nil {
			return err
		}
		for _, p := range positions {
			fmt.Println(p)
		}
		return nil
	},
}

var statsCmd = &cli.Command{
	Name:  "stats",
	Usage: "print the index's value count and metrics",
	Flags: []cli.Flag{dirFlag},
	Action: func(c *cli.Context) error {
		idx, closeIdx, err := openIndex(c.String("dir"))
		if err != nil {
			return err
		}
		defer closeIdx()

		fmt.Println("values:", idx.NumValues())
		for name, v := range idx.Metrics().Snapshot() {
			fmt.Printf("%s: %d\n", name, v)
		}
		return nil
	},
}

var benchCmd = &cli.Command{
	Name:  "bench",
	Usage: "append n random values below --max, then flush",
	Flags: []cli.Flag{
		dirFlag,
		&cli.IntFlag{Name: "n", Value: 1_000_000},
		&cli.Uint64Flag{Name: "max", Value: 1 << 20},
		&cli.Int64Flag{Name: "seed", Value: 1},
	},
	Action: func(c *cli.Context) error {
		idx, closeIdx, err := openIndex(c.String("dir"))
		if err != nil {
			return err
		}
		defer closeIdx()

		r := rand.New(rand.NewSource(c.Int64("seed")))
		maxV := c.Uint64("max")
		n := c.Int("n")
		for i := 0; i < n; i++ {
			if err := idx.Append(value.Uint64(r.Uint64() % maxV)); err != nil {
				return err
			}
		}
		return idx.Flush()
	},
}

func configPath(dir string) string { return dir + ".toml" }

func openIndex(dir string) (*index.Index[value.Uint64], func(), error) {
	idx, err := index.OpenStorage[value.Uint64](dir, ozbc.New)
	if err != nil {
		return nil, nil, err
	}
	if cfg, err := config.Load(configPath(dir)); err == nil {
		logger := xlog.New()
		logger.SetHandler(xlog.LvlFilterHandler(cfg.Level(), xlog.NewTerminalHandler(os.Stderr, false)))
		idx.SetLogger(logger)
	}
	return idx, func() { idx.Close() }, nil
}
