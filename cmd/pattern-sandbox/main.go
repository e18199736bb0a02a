// Command pattern-sandbox runs data-driven patterns in the terminal
//
// Usage:
//
//	pattern-sandbox [-file assets/demo.toml] [-prefab turret]
//	pattern-sandbox -pattern spiral [-from-library] [-trigger start]
//	pattern-sandbox -import assets/demo.toml
//	pattern-sandbox -list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/lixenwraith/vi-pattern/asset"
	"github.com/lixenwraith/vi-pattern/config"
	"github.com/lixenwraith/vi-pattern/core"
	"github.com/lixenwraith/vi-pattern/logging"
	"github.com/lixenwraith/vi-pattern/pattern"
	"github.com/lixenwraith/vi-pattern/vmath"
	"github.com/lixenwraith/vi-pattern/world"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pattern-sandbox: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, errors return through the deferred closes
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pattern-sandbox", flag.ContinueOnError)
	file := fs.String("file", "assets/demo.toml", "asset file with prefabs and patterns")
	prefab := fs.String("prefab", "turret", "prefab to place at the origin")
	patternName := fs.String("pattern", "", "run this pattern on a bare root entity instead of a prefab")
	fromLibrary := fs.Bool("from-library", false, "load -pattern from the library instead of -file")
	triggerName := fs.String("trigger", "start", "trigger for -pattern: manual, awake, start, enable")
	importFile := fs.String("import", "", "save every pattern of this file into the library and exit")
	list := fs.Bool("list", false, "list library patterns and exit")
	library := fs.String("library", "", "library path, overrides VIPATTERN_LIBRARY")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *library != "" {
		cfg.LibraryPath = *library
	}

	ctx := context.Background()
	switch {
	case *list:
		return listLibrary(ctx, cfg.LibraryPath, stdout)
	case *importFile != "":
		return importBundle(ctx, cfg.LibraryPath, *importFile, stdout)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	bundle, err := asset.LoadFile(*file)
	if err != nil {
		return err
	}

	var spawn func(w *world.World) (core.Entity, error)
	if *patternName != "" {
		trigger, err := pattern.ParseTrigger(*triggerName)
		if err != nil {
			return err
		}
		p, err := resolvePattern(ctx, cfg.LibraryPath, bundle, *patternName, *fromLibrary)
		if err != nil {
			return err
		}
		spawn = func(w *world.World) (core.Entity, error) {
			e := w.CreateEntity(world.Transform{}, true)
			w.Attach(e, p, trigger)
			return e, nil
		}
	} else {
		name := *prefab
		spawn = func(w *world.World) (core.Entity, error) {
			return w.Instantiate(name, vmath.V3FZero, vmath.QuatIdentity)
		}
	}

	sb, err := newSandbox(cfg, logger, bundle, spawn)
	if err != nil {
		return err
	}
	defer sb.fini()
	core.SetCrashReset(sb.fini)
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	return sb.run()
}

// openLogger writes to the configured file, the terminal belongs to the renderer
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Output:    f,
		Component: "pattern-sandbox",
	})
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, func() { _ = f.Close() }, nil
}

func resolvePattern(ctx context.Context, libPath string, b *asset.Bundle, name string, fromLibrary bool) (*pattern.Pattern, error) {
	if !fromLibrary {
		p, ok := b.Patterns[name]
		if !ok {
			return nil, fmt.Errorf("%w: pattern %q in bundle", asset.ErrNotFound, name)
		}
		return p, nil
	}
	lib, err := asset.Open(libPath)
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	return lib.Load(ctx, name)
}

func listLibrary(ctx context.Context, libPath string, out io.Writer) error {
	lib, err := asset.Open(libPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIONS\tUPDATED\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.Actions, e.UpdatedAt.Format("2006-01-02 15:04:05"), e.ID)
	}
	return tw.Flush()
}

func importBundle(ctx context.Context, libPath, file string, out io.Writer) error {
	b, err := asset.LoadFile(file)
	if err != nil {
		return err
	}
	lib, err := asset.Open(libPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	n, err := lib.Import(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d patterns into %s\n", n, libPath)
	return nil
}
