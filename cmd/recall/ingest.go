package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/urfave/cli/v2"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Store documents and embed them",
		ArgsUsage: "[FILE|-]...",
		Action:    ingestAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source-type",
				Aliases: []string{"s"},
				Usage:   "Source type (audio, pdf, web, text, image)",
				Value:   string(core.SourceTypeText),
			},
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Document title (defaults to the file name)",
			},
			&cli.StringFlag{
				Name:  "text",
				Usage: "Ingest this text instead of files",
			},
			&cli.StringFlag{
				Name:  "timestamp",
				Usage: "Creation time (RFC 3339 or YYYY-MM-DD); defaults to now",
			},
			&cli.StringSliceFlag{
				Name:    "meta",
				Aliases: []string{"m"},
				Usage:   "Metadata as key=value (repeatable)",
			},
		},
	}
}

func ingestAction(c *cli.Context) error {
	sourceType, err := core.ParseSourceType(c.String("source-type"))
	if err != nil {
		return err
	}
	timestamp, err := parseTime(c.String("timestamp"), time.Local)
	if err != nil {
		return err
	}
	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	docs, err := readDocuments(c)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("nothing to ingest: pass files, - for stdin, or --text")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(c.Context, docs, &ingestion.IngestOptions{
		SourceType: sourceType,
		Metadata:   metadata,
		Timestamp:  timestamp,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	pipeline.Wait()

	for _, doc := range added {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", doc.Id, doc.SourceType, doc.Title)
	}
	fmt.Fprintf(c.App.Writer, "Ingested %d documents\n", len(added))
	return nil
}

func readDocuments(c *cli.Context) ([]*core.Document, error) {
	title := c.String("title")

	var docs []*core.Document
	if text := c.String("text"); text != "" {
		docs = append(docs, &core.Document{Title: title, Body: text})
	}

	for _, arg := range c.Args().Slice() {
		var (
			data []byte
			err  error
			doc  = &core.Document{Title: title}
		)
		if arg == "-" {
			data, err = io.ReadAll(c.App.Reader)
		} else {
			data, err = os.ReadFile(arg)
			if doc.Title == "" {
				doc.Title = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
			}
			if abs, absErr := filepath.Abs(arg); absErr == nil {
				doc.Metadata = map[string]string{"source_path": abs}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		doc.Body = string(data)
		docs = append(docs, doc)
	}
	return docs, nil
}
