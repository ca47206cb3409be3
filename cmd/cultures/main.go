// Command cultures inspects and exports the game's data files.
//
// Usage:
//
//	cultures --archive data.lib ls data/engine2d
//	cultures cif data\engine2d\inis\landscapes\landscapes.cif
//	cultures --local bmd --out frames/ ls_trees.bmd
//	cultures landscape "tree 01" frames/
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gitgub.com/cam-per/cultures/internal/archive"
	"gitgub.com/cam-per/cultures/internal/config"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/encoding/charmap"
)

type app struct {
	config   config.Config
	encoding *charmap.Charmap
	logger   *slog.Logger
	stderr   io.Writer
}

func main() {
	a := &app{stderr: os.Stderr}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cultures:", err)
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "cultures",
		Usage: "inspect and export Cultures data files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "INI settings file",
				Sources: cli.EnvVars("CULTURES_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "archive",
				Aliases: []string{"a"},
				Usage:   "data archive (.lib) to read paths from",
				Sources: cli.EnvVars("CULTURES_ARCHIVE"),
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "read paths from the local file system instead of the archive",
			},
			&cli.StringFlag{
				Name:  "charset",
				Usage: "code page of stored strings",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.lsCommand(),
			a.catCommand(),
			a.hexdumpCommand(),
			a.cifCommand(),
			a.mapCommand(),
			a.bmdCommand(),
			a.pcxCommand(),
			a.landscapeCommand(),
			a.textureCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return ctx, err
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	a.config = config.Default()
	if name := cmd.String("config"); name != "" {
		cfg, err := config.Load(name)
		if err != nil {
			return ctx, err
		}
		a.config = cfg
	}
	if name := cmd.String("archive"); name != "" {
		a.config.Archive.Path = name
	}
	if name := cmd.String("charset"); name != "" {
		a.config.Decode.Charset = name
	}
	enc, err := config.Charset(a.config.Decode.Charset)
	if err != nil {
		return ctx, err
	}
	a.encoding = enc
	return ctx, nil
}

func (a *app) openArchive() (*archive.Archive, error) {
	a.logger.Debug("opening archive", "path", a.config.Archive.Path)
	return archive.Open(a.config.Archive.Path, a.encoding)
}

// read loads one input file, from the archive unless --local is set.
func (a *app) read(cmd *cli.Command, name string) ([]byte, error) {
	if cmd.Bool("local") {
		return os.ReadFile(name)
	}
	lib, err := a.openArchive()
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	return lib.ReadFile(name)
}

func arg(cmd *cli.Command, i int, what string) (string, error) {
	if cmd.Args().Len() <= i {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, what)
	}
	return cmd.Args().Get(i), nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
