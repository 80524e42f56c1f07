package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
)

type exportCmd struct {
	Name   string `default:"Claims Dashboard" help:"Board name recorded in the export."`
	Out    string `short:"o" type:"path" help:"Output file or directory. Defaults to <name>.yaml in the working directory; '-' writes to stdout."`
	Force  bool   `help:"Overwrite an existing file."`
	Seeded bool   `help:"Place the claims panels on an empty board before exporting."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Seeded {
		seed := commands.NewSeedBoardCommand(a.service, a.panels, a.telemetry)
		if err := seed.Execute(ctx, commands.SeedBoardInput{Year: a.cfg.Seed.Year}); err != nil {
			return err
		}
	}
	doc := dashboard.NewBoardDocument(cmd.Name, a.service.Snapshot())
	if cmd.Out == "-" {
		return dashboard.EncodeBoardDocument(g.out(), doc)
	}
	path := exportPath(cmd.Out, cmd.Name)
	if !cmd.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("claimsctl: %s already exists (use --force to overwrite)", path)
		}
	}
	if err := dashboard.WriteBoardFile(path, doc); err != nil {
		return err
	}
	printf(g.out(), "exported %d widgets to %s\n", len(doc.Widgets), path)
	return nil
}

// exportPath resolves the destination file. A directory or empty out gets a
// kebab-case file name derived from the board name.
func exportPath(out, name string) string {
	file := strcase.ToKebab(name)
	if file == "" {
		file = "board"
	}
	file += ".yaml"
	out = strings.TrimSpace(out)
	if out == "" {
		return file
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, file)
	}
	return out
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"Board YAML exported by 'claimsctl export'."`
}

func (cmd *importCmd) Run(ctx context.Context, g *Globals) error {
	doc, err := dashboard.ReadBoardFile(cmd.File)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	importer := commands.NewImportBoardCommand(a.service, a.telemetry)
	if err := importer.Execute(ctx, commands.ImportBoardInput{Board: doc.Board()}); err != nil {
		return err
	}
	printf(g.out(), "imported %d widgets from %s\n", len(doc.Widgets), cmd.File)
	return nil
}
