package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/cultures/mapfile"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/sjson"
	"github.com/urfave/cli/v3"
)

func (a *app) mapCommand() *cli.Command {
	return &cli.Command{
		Name:      "map",
		Usage:     "summarize the sections of a map file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON"},
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
			decoder, err := mapfile.NewDecoder(bytes.NewReader(data), a.encoding)
			if err != nil {
				return err
			}

			var missing []string
			if _, err := decoder.MapData(); err != nil {
				var missingErr *errs.MissingError
				if !errors.As(err, &missingErr) {
					return err
				}
				missing = missingErr.Names
			}

			if cmd.Bool("json") {
				out, err := mapJSON(decoder, missing)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout(cmd), string(out))
				return err
			}

			w := stdout(cmd)
			if size, ok := decoder.Size(); ok {
				fmt.Fprintf(w, "size %dx%d\n", size.Width, size.Height)
			}
			for _, section := range decoder.Sections() {
				codec := "skipped"
				if c, ok := mapfile.Codec(section.Tag); ok {
					codec = c.String()
				}
				elements := ""
				if p, ok := decoder.Payload(section.Tag); ok {
					elements = humanize.Comma(int64(p.Len())) + " elements"
				}
				fmt.Fprintf(w, "%s  %08x  %9s  %-10s %s\n",
					section.Tag, section.Offset, humanize.IBytes(uint64(section.Length)), codec, elements)
			}
			if len(missing) > 0 {
				fmt.Fprintf(w, "missing %v\n", missing)
			}
			return nil
		},
	}
}

func mapJSON(decoder *mapfile.Decoder, missing []string) ([]byte, error) {
	out := []byte(`{"sections":[]}`)
	var err error
	if size, ok := decoder.Size(); ok {
		out, err = setAll(out, "width", size.Width, "height", size.Height)
	}
	if err == nil {
		out, err = setAll(out, "complete", len(missing) == 0, "missing", append([]string{}, missing...))
	}
	for _, section := range decoder.Sections() {
		if err != nil {
			break
		}
		var obj []byte
		obj, err = setAll([]byte(`{}`),
			"tag", string(section.Tag),
			"offset", section.Offset,
			"length", section.Length,
			"known", section.Known)
		if c, ok := mapfile.Codec(section.Tag); ok && err == nil {
			obj, err = sjson.SetBytes(obj, "codec", c.String())
		}
		if p, ok := decoder.Payload(section.Tag); ok && err == nil {
			obj, err = sjson.SetBytes(obj, "elements", p.Len())
		}
		if err == nil {
			out, err = sjson.SetRawBytes(out, "sections.-1", obj)
		}
	}
	return out, err
}

// setAll sets path/value pairs in order.
func setAll(doc []byte, kv ...any) ([]byte, error) {
	var err error
	for i := 0; i+1 < len(kv); i += 2 {
		if doc, err = sjson.SetBytes(doc, kv[i].(string), kv[i+1]); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
