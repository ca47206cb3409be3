package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gitgub.com/cam-per/cultures/cultures/bmd"
	"gitgub.com/cam-per/cultures/cultures/pal"
	"gitgub.com/cam-per/cultures/cultures/pcx"
	"gitgub.com/cam-per/cultures/internal/config"
	"github.com/tidwall/sjson"
	"github.com/urfave/cli/v3"
)

func (a *app) bmdCommand() *cli.Command {
	return &cli.Command{
		Name:      "bmd",
		Usage:     "list or export the frames of a sprite file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the frame table as JSON"},
			&cli.StringFlag{Name: "out", Usage: "directory to export frames and a sheet into"},
			&cli.StringFlag{Name: "format", Usage: "export format, png or bmp"},
			&cli.StringFlag{Name: "palette", Usage: "PCX file whose palette colors the frames"},
			&cli.StringFlag{Name: "alpha", Usage: "extended frame alpha: alpha or ignore"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := arg(cmd, 0, "path")
			if err != nil {
				return err
			}
			data, err := a.read(cmd, name)
			if err != nil {
				return err
			}
			decoder, err := bmd.NewDecoder(bytes.NewReader(data))
			if err != nil {
				return err
			}

			if dir := cmd.String("out"); dir != "" {
				return a.exportFrames(cmd, decoder, dir)
			}
			w := stdout(cmd)
			if cmd.Bool("json") {
				out, err := framesJSON(decoder)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(out))
				return err
			}
			for i, f := range decoder.Frames() {
				fmt.Fprintf(w, "%4d  %-8s %3dx%-3d at (%d,%d) rows %d..%d\n",
					i, f.Kind, f.Width, f.Rows, f.Dx, f.Dy, f.FirstRow, f.FirstRow+f.Rows)
			}
			fmt.Fprintf(w, "%d frames, %d rows, %d pool bytes\n",
				len(decoder.Frames()), len(decoder.Rows()), decoder.PoolSize())
			return nil
		},
	}
}

func framesJSON(decoder *bmd.Decoder) ([]byte, error) {
	out, err := setAll([]byte(`{"frames":[]}`),
		"rows", len(decoder.Rows()),
		"pool", decoder.PoolSize())
	if err != nil {
		return nil, err
	}
	for _, f := range decoder.Frames() {
		obj, err := setAll([]byte(`{}`),
			"kind", f.Kind.String(),
			"dx", f.Dx,
			"dy", f.Dy,
			"width", f.Width,
			"rows", f.Rows,
			"first_row", f.FirstRow)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "frames.-1", obj); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *app) palette(cmd *cli.Command) (pal.Palette, error) {
	name := cmd.String("palette")
	if name == "" {
		return grayPalette(), nil
	}
	data, err := a.read(cmd, name)
	if err != nil {
		return nil, err
	}
	return pcx.DecodePalette(data)
}

func (a *app) exportFrames(cmd *cli.Command, decoder *bmd.Decoder, dir string) error {
	palette, err := a.palette(cmd)
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

	frames, err := decoder.All(palette, mode)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, img := range frames {
		if img.Bounds().Empty() {
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("frame_%04d.%s", i, format))
		if err := encodeImage(name, format, img); err != nil {
			return err
		}
	}
	if s := sheet(decoder.Frames(), frames); !s.Bounds().Empty() {
		if err := encodeImage(filepath.Join(dir, "sheet."+format), format, s); err != nil {
			return err
		}
	}
	a.logger.Info("exported frames", "dir", dir, "frames", len(frames))
	return nil
}
