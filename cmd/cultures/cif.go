package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"gitgub.com/cam-per/cultures/cultures/cif"
	"github.com/urfave/cli/v3"
	"gopkg.in/ini.v1"
)

func (a *app) cifCommand() *cli.Command {
	return &cli.Command{
		Name:      "cif",
		Usage:     "decode a definition container",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "print sections and items without building records"},
			&cli.BoolFlag{Name: "ini", Usage: "print sections as INI text"},
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
			decoder, err := cif.NewDecoder(bytes.NewReader(data), a.encoding)
			if err != nil {
				return err
			}
			if n := decoder.Dropped(); n > 0 {
				a.logger.Info("dropped lines", "file", name, "lines", n)
			}
			w := stdout(cmd)
			switch {
			case cmd.Bool("ini"):
				return writeINI(w, decoder.Sections())
			case cmd.Bool("raw"):
				for _, section := range decoder.Sections() {
					fmt.Fprintf(w, "[%s]\n", section.Name)
					for _, item := range section.Items {
						fmt.Fprintf(w, "%s %s\n", item.Key, item.Value)
					}
				}
				return nil
			}
			records, err := decoder.Records()
			if err != nil {
				return err
			}
			for _, record := range records {
				fmt.Fprintf(w, "%-14s %s\n", record.Schema(), describe(record))
			}
			return nil
		},
	}
}

// writeINI keeps repeated sections and repeated keys in order.
func writeINI(w io.Writer, sections []cif.Section) error {
	file := ini.Empty(ini.LoadOptions{AllowShadows: true, AllowNonUniqueSections: true})
	for _, s := range sections {
		section, err := file.NewSection(s.Name)
		if err != nil {
			return err
		}
		for _, item := range s.Items {
			if section.HasKey(item.Key) {
				if err := section.Key(item.Key).AddShadow(item.Value); err != nil {
					return err
				}
				continue
			}
			if _, err := section.NewKey(item.Key, item.Value); err != nil {
				return err
			}
		}
	}
	_, err := file.WriteTo(w)
	return err
}

func describe(record cif.Record) string {
	switch r := record.(type) {
	case *cif.Landscape:
		return fmt.Sprintf("%s bmd=%s frames=%d", r.EditName, r.GfxBobLibs.BMD, len(r.GfxFrames))
	case *cif.Palette256:
		return fmt.Sprintf("%s file=%s", r.EditName, r.GfxFile)
	case *cif.Pattern:
		return fmt.Sprintf("%s texture=%s", r.EditName, r.GfxTexture)
	case *cif.Transition:
		return fmt.Sprintf("%s texture=%s alpha=%s", r.Name, r.GfxTexture, r.GfxTextureAlpha)
	case *cif.Text:
		ids := make([]int, 0, len(r.Strings))
		for id := range r.Strings {
			ids = append(ids, int(id))
		}
		sort.Ints(ids)
		if len(ids) == 0 {
			return "0 strings"
		}
		return fmt.Sprintf("%d strings, ids %d..%d", len(ids), ids[0], ids[len(ids)-1])
	case *cif.Unknown:
		return fmt.Sprintf("(%d items)", len(r.Section.Items))
	}
	return ""
}
