package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tramagrid/tramagrid"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required unless -load is given)")
	configFile := flag.String("config", "",
		"JSON configuration file; flags override its values")
	width := flag.Int("width", 130, "Chart width in stitches")
	colors := flag.Int("colors", 64, "Maximum number of colors")
	brightness := flag.Float64("brightness", 1.0, "Brightness multiplier")
	contrast := flag.Float64("contrast", 1.0, "Contrast multiplier")
	saturation := flag.Float64("saturation", 1.0, "Saturation multiplier")
	gamma := flag.Float64("gamma", 1.0, "Gamma correction")
	posterize := flag.Int("posterize", 8, "Bits kept per channel (1-8)")
	gaugeStitches := flag.Int("gauge-stitches", 20, "Stitches per 10 cm")
	gaugeRows := flag.Int("gauge-rows", 20, "Rows per 10 cm")
	cellSize := flag.Int("cell", 22, "Rendered stitch size in pixels")
	noGrid := flag.Bool("nogrid", false, "Render without grid lines and numbers")
	highlight := flag.Int("highlight", -1, "Row to highlight in the -preview image")
	mergeBelow := flag.Float64("merge", 0,
		"Merge palette colors closer than this RGB distance")
	pngOut := flag.String("png", "", "Write the chart image to this PNG file")
	previewOut := flag.String("preview", "", "Write the highlighted preview to this PNG file")
	pdfOut := flag.String("pdf", "", "Write the printable pattern to this PDF file")
	storeDir := flag.String("store", "", "Directory for saved charts")
	id := flag.String("id", "", "Chart id within -store")
	load := flag.Bool("load", false, "Load chart -id from -store instead of generating")
	lite := flag.Bool("lite", false, "Do not store the source image when saving")
	printRows := flag.Bool("rows", false, "Print row by row instructions")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	var err error
	var l *zap.Logger
	if *verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck

	if *inputFile == "" && !*load {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if (*load || *storeDir != "") && (*storeDir == "" || *id == "") {
		fmt.Println("-store and -id must be given together")
		os.Exit(2)
	}

	cfg := tramagrid.DefaultConfig()
	if *configFile != "" {
		if cfg, err = tramagrid.LoadConfig(*configFile); err != nil {
			l.Fatal("load config", zap.String("path", *configFile), zap.Error(err))
		}
	}

	// Only flags given on the command line override the config file.
	var u tramagrid.ConfigUpdate
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			u.GridWidth = width
		case "colors":
			u.MaxColors = colors
		case "brightness":
			u.Brightness = brightness
		case "contrast":
			u.Contrast = contrast
		case "saturation":
			u.Saturation = saturation
		case "gamma":
			u.Gamma = gamma
		case "posterize":
			u.Posterize = posterize
		case "gauge-stitches":
			u.GaugeStitches = gaugeStitches
		case "gauge-rows":
			u.GaugeRows = gaugeRows
		case "cell":
			u.CellSize = cellSize
		case "nogrid":
			show := !*noGrid
			u.ShowGrid = &show
		case "highlight":
			u.HighlightedRow = highlight
		}
	})

	chart := tramagrid.NewChart(tramagrid.WithConfig(cfg), tramagrid.WithLogger(l))
	var store *tramagrid.FileStore
	if *storeDir != "" {
		store = tramagrid.NewFileStore(*storeDir)
	}

	if *load {
		if err := chart.Load(store, *id); err != nil {
			l.Fatal("load chart", zap.String("id", *id), zap.Error(err))
		}
	}
	chart.Configure(u)

	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			l.Fatal("read input", zap.String("path", *inputFile), zap.Error(err))
		}
		if err := chart.LoadImage(data); err != nil {
			l.Fatal("decode input", zap.String("path", *inputFile), zap.Error(err))
		}
		if err := chart.Generate(); err != nil {
			l.Fatal("generate chart", zap.Error(err))
		}
	}

	if *mergeBelow > 0 {
		for _, group := range chart.SuggestClusters(*mergeBelow) {
			if err := chart.MergeMany(group[1:], group[0]); err != nil {
				l.Fatal("merge colors", zap.Ints("group", group), zap.Error(err))
			}
		}
	}

	cols, rows := chart.Size()
	l.Info("chart ready",
		zap.Int("cols", cols),
		zap.Int("rows", rows),
		zap.Int("colors", chart.Palette().Len()))

	if *pngOut != "" {
		writeFile(l, *pngOut, chart.ExportPNG)
	}
	if *previewOut != "" {
		data, err := chart.PreviewPNG(chart.Config().HighlightedRow)
		if err != nil {
			l.Fatal("render preview", zap.Error(err))
		}
		if err := os.WriteFile(*previewOut, data, 0o644); err != nil {
			l.Fatal("write preview", zap.String("path", *previewOut), zap.Error(err))
		}
	}
	if *pdfOut != "" {
		writeFile(l, *pdfOut, chart.ExportPDF)
	}
	if *printRows {
		printInstructions(chart, rows)
	}

	if store != nil {
		if err := chart.Save(store, *id, *lite); err != nil {
			l.Fatal("save chart", zap.String("id", *id), zap.Error(err))
		}
		l.Info("saved chart", zap.String("id", *id), zap.String("store", *storeDir))
	}
}

// writeFile creates path and fills it with write.
func writeFile(l *zap.Logger, path string, write func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		l.Fatal("create output", zap.String("path", path), zap.Error(err))
	}
	if err := write(f); err != nil {
		f.Close()
		l.Fatal("write output", zap.String("path", path), zap.Error(err))
	}
	if err := f.Close(); err != nil {
		l.Fatal("close output", zap.String("path", path), zap.Error(err))
	}
	l.Info("wrote output", zap.String("path", path))
}

// printInstructions prints every row in working order, bottom row first.
func printInstructions(chart *tramagrid.Chart, rows int) {
	for n := 1; n <= rows; n++ {
		var parts []string
		for _, e := range chart.RowSummary(n) {
			parts = append(parts, fmt.Sprintf("%dx%s", e.Count, e.Hex))
		}
		fmt.Printf("R%d [%s]: %s\n", n, tramagrid.RowDirection(n).Arrow(), strings.Join(parts, " "))
	}
}
