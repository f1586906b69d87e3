package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/internal/config"
	"github.com/flywave/go-jvxl/internal/store"
	"github.com/flywave/go-jvxl/pipeline"
	"github.com/flywave/go-jvxl/readers"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "encode":
		err = handleEncode(args)
	case "info":
		err = handleInfo(args)
	case "list":
		err = handleList(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvxl %s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`jvxl - isosurface extraction and JVXL encoding

Usage: jvxl <command> [options]

Commands:
  encode   Extract a surface from a grid or mesh file and write JVXL
  info     Describe a JVXL document as JSON
  list     List documents kept in a surface store
  help     Show this help message

Examples:
  jvxl encode -in density.cube -cutoff 0.05 -out density.jvxl
  jvxl encode -in density.cube -map potential.cube -config surface.json -store surfaces.db
  jvxl info -in density.jvxl
  jvxl list -store surfaces.db`)
}

func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	jvxl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func handleEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	in := fs.String("in", "", "Grid or mesh file to read (required)")
	mapPath := fs.String("map", "", "Grid file whose values color the surface")
	cfgPath := fs.String("config", "", "Surface configuration JSON file")
	out := fs.String("out", "", "Output JVXL file (default stdout)")
	cutoff := fs.Float64("cutoff", 0, "Cutoff, overrides the configuration")
	all := fs.Bool("all", false, "Encode every stacked surface of a multi-surface file")
	dbPath := fs.String("store", "", "Also save the document in this sqlite store")
	verbose := fs.Bool("v", false, "Log progress to stderr")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("-in is required")
	}
	setupLogging(*verbose)

	cfg := &config.SurfaceConfig{}
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "cutoff" {
			cfg.Cutoff = cutoff
		}
	})
	params := cfg.ToParams()
	ropts := cfg.ReaderOptions()

	src, err := readers.Open(*in, ropts)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var doc *jvxl.Document
	if ms, ok := src.(readers.MultiSource); ok && *all {
		doc, err = pipeline.RunAll(ctx, params, ms)
	} else {
		var mapSrc readers.Source
		if *mapPath != "" {
			if mapSrc, err = readers.Open(*mapPath, readers.Options{NativeUnits: ropts.NativeUnits, Recovery: ropts.Recovery}); err != nil {
				return err
			}
		}
		doc, err = pipeline.Run(ctx, params, src, mapSrc)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		if err := doc.Write(os.Stdout); err != nil {
			return err
		}
	} else {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		if err := doc.Write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		id, err := st.Save(ctx, filepath.Base(*in), doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", id)
	}
	return nil
}

func handleInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "JVXL file (required)")
	id := fs.String("id", "", "Read document id from -store instead of -in")
	dbPath := fs.String("store", "", "Surface store")
	fs.Parse(args)

	var doc *jvxl.Document
	switch {
	case *id != "" && *dbPath != "":
		st, err := store.Open(*dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if doc, err = st.Load(context.Background(), *id); err != nil {
			return err
		}
	case *in != "":
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		if doc, err = jvxl.Read(f); err != nil {
			return err
		}
	default:
		return fmt.Errorf("-in or -id with -store is required")
	}
	b, err := jvxl.NewDocumentInfo(doc).JSON()
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func handleList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("store", "", "Surface store (required)")
	fs.Parse(args)

	if *dbPath == "" {
		return fmt.Errorf("-store is required")
	}
	st, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	recs, err := st.List(context.Background())
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s\t%s\t%d\t%s\n", r.SurfaceID, r.Name, r.NSurfaces, r.Mode)
	}
	return nil
}
