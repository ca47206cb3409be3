package main

import (
	"context"
	"fmt"
	"image"
	"strings"

	"gitgub.com/cam-per/cultures/cultures/pcx"
	"github.com/urfave/cli/v3"
)

func (a *app) pcxCommand() *cli.Command {
	return &cli.Command{
		Name:      "pcx",
		Usage:     "convert a PCX image",
		ArgsUsage: "<path> <output>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mask", Usage: "PCX file holding per-pixel alpha"},
			&cli.IntFlag{
				Name:  "scale",
				Value: 1,
				Usage: "integer enlargement factor",
				Validator: func(v int) error {
					if v < 1 {
						return fmt.Errorf("scale must be at least 1, got %d", v)
					}
					return nil
				},
			},
			&cli.BoolFlag{Name: "indexed", Usage: "keep the palette indices instead of writing RGBA"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := arg(cmd, 0, "path")
			if err != nil {
				return err
			}
			output, err := arg(cmd, 1, "output")
			if err != nil {
				return err
			}
			data, err := a.read(cmd, name)
			if err != nil {
				return err
			}
			var img image.Image
			if cmd.Bool("indexed") {
				if cmd.String("mask") != "" {
					return fmt.Errorf("pcx: --indexed cannot carry a --mask")
				}
				if img, err = pcx.DecodePaletted(data); err != nil {
					return err
				}
			} else {
				var mask []byte
				if m := cmd.String("mask"); m != "" {
					if mask, err = a.read(cmd, m); err != nil {
						return err
					}
				}
				if img, err = pcx.Decode(data, mask); err != nil {
					return err
				}
			}

			format := a.config.Export.Format
			if i := strings.LastIndexByte(output, '.'); i >= 0 {
				format = output[i+1:]
			}
			return encodeImage(output, format, scale(img, cmd.Int("scale")))
		},
	}
}
