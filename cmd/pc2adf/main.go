// Command pc2adf translates PowerCenter export files into Data Factory
// artifacts on disk, without the API server or database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/config"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/export"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/parser"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/translate"
)

func main() {
	outDir := flag.String("out", "exports", "output directory for generated artifacts")
	mappingFile := flag.String("datasets", "dataset_mapping.json", "dataset name mapping file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pc2adf [-out dir] [-datasets file] export.xml [export.xml ...]")
		os.Exit(2)
	}

	datasetMapping, err := config.LoadDatasetMapping(*mappingFile)
	if err != nil {
		log.Fatalf("Failed to load dataset mapping: %v", err)
	}

	failed := false
	for _, path := range flag.Args() {
		meta, err := parser.ParseFile(path)
		if err != nil {
			log.Printf("Failed to parse %s: %v", path, err)
			failed = true
			continue
		}

		out, err := translate.Run(meta, datasetMapping)
		if err != nil {
			log.Printf("Failed to translate %s: %v", path, err)
			failed = true
			continue
		}

		run := &domain.MigrationRun{
			MappingName: out.MappingName,
			SourceFile:  path,
			Status:      domain.RunCompleted,
			ScriptLines: out.ScriptLines,
			Dataflow:    out.Dataflow,
			Pipeline:    out.Pipeline,
			Report:      out.Report,
			Diagnostics: out.Diagnostics,
		}
		if err := export.WriteArtifacts(*outDir, run); err != nil {
			log.Printf("Failed to write artifacts for %s: %v", out.MappingName, err)
			failed = true
			continue
		}

		warnings := len(out.Diagnostics.Warnings())
		errors := len(out.Diagnostics.Errors())
		log.Printf("%s: %d script lines, %d warning(s), %d error(s)",
			out.MappingName, len(out.ScriptLines), warnings, errors)
		if errors > 0 {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
