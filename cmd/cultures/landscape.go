package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gitgub.com/cam-per/cultures/internal/archive"
	"gitgub.com/cam-per/cultures/internal/config"
	"gitgub.com/cam-per/cultures/internal/registry"
	"gitgub.com/cam-per/cultures/internal/resource"
	"github.com/urfave/cli/v3"
)

// resources opens the archive and loads the definition registry from it.
// The caller closes the returned archive.
func (a *app) resources() (*archive.Archive, *resource.Manager, error) {
	lib, err := a.openArchive()
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.Load(lib, a.encoding, a.logger)
	if err != nil {
		lib.Close()
		return nil, nil, err
	}
	return lib, resource.New(lib, reg, a.encoding, a.logger), nil
}

func (a *app) landscapeCommand() *cli.Command {
	return &cli.Command{
		Name:      "landscape",
		Usage:     "export the frames of a landscape definition",
		ArgsUsage: "<name> <dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "export format, png or bmp"},
			&cli.StringFlag{Name: "alpha", Usage: "extended frame alpha: alpha or ignore"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := arg(cmd, 0, "name")
			if err != nil {
				return err
			}
			dir, err := arg(cmd, 1, "dir")
			if err != nil {
				return err
			}
			mode, err := a.config.AlphaMode()
			if err != nil {
				return err
			}
			if s := cmd.String("alpha"); s != "" {
				if mode, err = config.ParseAlpha(s); err != nil {
					return err
				}
			}
			format := a.config.Export.Format
			if s := cmd.String("format"); s != "" {
				format = s
			}

			lib, manager, err := a.resources()
			if err != nil {
				return err
			}
			defer lib.Close()
			sprite, err := manager.Landscape(ctx, name, mode)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for i, img := range sprite.Images {
				if img.Bounds().Empty() {
					continue
				}
				if err := encodeImage(filepath.Join(dir, fmt.Sprintf("frame_%04d.%s", i, format)), format, img); err != nil {
					return err
				}
			}
			for i, img := range sprite.Shadows {
				if img.Bounds().Empty() {
					continue
				}
				if err := encodeImage(filepath.Join(dir, fmt.Sprintf("shadow_%04d.%s", i, format)), format, img); err != nil {
					return err
				}
			}
			if s := sheet(sprite.Frames, sprite.Images); !s.Bounds().Empty() {
				if err := encodeImage(filepath.Join(dir, "sheet."+format), format, s); err != nil {
					return err
				}
			}
			a.logger.Info("exported landscape", "name", name, "frames", len(sprite.Images), "shadows", len(sprite.Shadows))
			return nil
		},
	}
}

func (a *app) textureCommand() *cli.Command {
	return &cli.Command{
		Name:      "texture",
		Usage:     "export a pattern or transition texture by name",
		ArgsUsage: "<pattern|transition> <name> <output>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, err := arg(cmd, 0, "kind")
			if err != nil {
				return err
			}
			name, err := arg(cmd, 1, "name")
			if err != nil {
				return err
			}
			out, err := arg(cmd, 2, "output")
			if err != nil {
				return err
			}

			lib, manager, err := a.resources()
			if err != nil {
				return err
			}
			defer lib.Close()

			var load func(string) (*image.NRGBA, error)
			switch kind {
			case "pattern":
				load = manager.Pattern
			case "transition":
				load = manager.Transition
			default:
				return fmt.Errorf("texture: unknown kind %q", kind)
			}
			img, err := load(name)
			if err != nil {
				return err
			}
			format := a.config.Export.Format
			if i := strings.LastIndexByte(out, '.'); i >= 0 {
				format = out[i+1:]
			}
			return encodeImage(out, format, img)
		},
	}
}
