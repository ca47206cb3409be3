package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"gitgub.com/cam-per/cultures/internal/archive"
	"gitgub.com/cam-per/cultures/utils"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func (a *app) lsCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "list archive files",
		ArgsUsage: "[prefix]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lib, err := a.openArchive()
			if err != nil {
				return err
			}
			defer lib.Close()

			prefix := archive.Key(cmd.Args().First())
			w := stdout(cmd)
			var count int
			var total uint64
			for _, e := range lib.Files() {
				if !strings.HasPrefix(archive.Key(e.Path()), prefix) {
					continue
				}
				count++
				total += uint64(e.Size())
				fmt.Fprintf(w, "%10s  %08x  %s\n", humanize.IBytes(uint64(e.Size())), e.Offset(), e.Path())
			}
			fmt.Fprintf(w, "%d files, %s\n", count, humanize.IBytes(total))
			return nil
		},
	}
}

func (a *app) catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "write a file to standard output",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := arg(cmd, 0, "path")
			if err != nil {
				return err
			}
			data, err := a.read(cmd, name)
			if err != nil {
				return err
			}
			_, err = stdout(cmd).Write(data)
			return err
		},
	}
}

func (a *app) hexdumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "hexdump",
		Usage:     "hex dump a byte range of a file",
		ArgsUsage: "<path> [offset [length]]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := arg(cmd, 0, "path")
			if err != nil {
				return err
			}
			data, err := a.read(cmd, name)
			if err != nil {
				return err
			}
			offset, length := int64(0), int64(len(data))
			if s := cmd.Args().Get(1); s != "" {
				if offset, err = strconv.ParseInt(s, 0, 64); err != nil {
					return fmt.Errorf("hexdump: offset %q: %w", s, err)
				}
				length -= offset
			}
			if s := cmd.Args().Get(2); s != "" {
				if length, err = strconv.ParseInt(s, 0, 64); err != nil {
					return fmt.Errorf("hexdump: length %q: %w", s, err)
				}
			}
			if offset < 0 || offset > int64(len(data)) {
				return fmt.Errorf("hexdump: offset %d outside %d bytes", offset, len(data))
			}
			if length < 0 || offset+length > int64(len(data)) {
				length = int64(len(data)) - offset
			}
			return utils.HexDump(stdout(cmd), bytes.NewReader(data), offset, length)
		},
	}
}
