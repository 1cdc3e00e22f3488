package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reoring/idlkit"
	"github.com/reoring/idlkit/i18n"
	"github.com/reoring/idlkit/internal/config"
	"github.com/reoring/idlkit/loader"
	"github.com/reoring/idlkit/onchain"
	"github.com/reoring/idlkit/source"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg := config.Load()
	i18n.SetLanguage(cfg.Lang)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	sub := os.Args[1]
	switch sub {
	case "classify":
		classifyCmd(os.Args[2:])
	case "convert-type":
		convertTypeCmd(os.Args[2:])
	case "normalize":
		normalizeCmd(os.Args[2:], logger)
	case "fetch":
		fetchCmd(os.Args[2:], cfg, logger)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "idlkit CLI\n\nUsage:\n  idlkit classify [-f idl.json]\n  idlkit convert-type [-at /types/0/type] '<json type expression>'\n  idlkit normalize [-f idl.json] [-format json|yaml] [-o out]\n  idlkit fetch -program <base58 id> [-rpc url] [-format json|yaml] [-o out]\n\nNotes:\n  - Reads stdin when -f is omitted.\n  - IDLKIT_RPC_URL, IDLKIT_CACHE_SIZE, IDLKIT_LOG_LEVEL and IDLKIT_LANG are read from the environment or .env.")
}

func classifyCmd(args []string) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	var in string
	fs.StringVar(&in, "f", "", "IDL file (JSON or YAML); stdin when empty")
	_ = fs.Parse(args)

	doc := readDocument(in)
	fmt.Println(idlkit.Classify(doc))
}

func convertTypeCmd(args []string) {
	fs := flag.NewFlagSet("convert-type", flag.ExitOnError)
	var format, at string
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	fs.StringVar(&at, "at", "", "JSON Pointer of the expression inside its document")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	t, err := idlkit.ParseType([]byte(fs.Arg(0)))
	if err != nil {
		fatalIssues(err)
	}
	ct, err := idlkit.ConvertType(t, idlkit.WithRoot(at), idlkit.WithPassThroughHook(func(pt idlkit.PassThrough) {
		fmt.Fprintf(os.Stderr, "pass-through %s at %s\n", pt.Type, pt.Path)
	}))
	if err != nil {
		fatalIssues(err)
	}
	writeOutput("", idlkit.ToValue(ct), format)
}

func normalizeCmd(args []string, logger *slog.Logger) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	var in, out, format string
	fs.StringVar(&in, "f", "", "IDL file (JSON or YAML); stdin when empty")
	fs.StringVar(&out, "o", "", "output file; stdout when empty")
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	_ = fs.Parse(args)

	doc := readDocument(in)
	res, diag, err := idlkit.Normalize(doc)
	if err != nil {
		fatalIssues(err)
	}
	for _, w := range diag.Warnings() {
		logger.Warn("normalize", "warning", w)
	}
	logger.Debug("normalized", "spec", string(idlkit.Classify(doc)))
	writeOutput(out, res, format)
}

func fetchCmd(args []string, cfg *config.Config, logger *slog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var program, rpcURL, out, format string
	fs.StringVar(&program, "program", "", "program id (base58)")
	fs.StringVar(&rpcURL, "rpc", cfg.RPCURL, "Solana RPC endpoint")
	fs.StringVar(&out, "o", "", "output file; stdout when empty")
	fs.StringVar(&format, "format", "json", "output format: json or yaml")
	_ = fs.Parse(args)
	if program == "" {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := loader.New(onchain.NewRPCFetcher(rpcURL), loader.WithCacheSize(cfg.CacheSize), loader.WithLogger(logger))
	if err != nil {
		fatalf("%v", err)
	}
	res, err := l.Load(ctx, program)
	if err != nil {
		fatalIssues(err)
	}
	logger.Info("fetched", "program", res.ProgramID, "spec", string(res.Spec), "warnings", len(res.Warnings))
	writeOutput(out, res.IDL, format)
}

func readDocument(path string) map[string]any {
	var r io.Reader = os.Stdin
	if path != "" {
		f, ferr := os.Open(path)
		if ferr != nil {
			fatalf("open %s: %v", path, ferr)
		}
		defer f.Close()
		r = f
	}
	doc, err := source.DecodeReader(r)
	if err != nil {
		fatalf("%v", err)
	}
	return doc
}

func writeOutput(path string, v any, format string) {
	f, err := source.ParseFormat(format)
	if err != nil {
		fatalf("%v", err)
	}
	b, err := source.Encode(v, f)
	if err != nil {
		fatalf("%v", err)
	}
	if path == "" {
		_, _ = os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

// fatalIssues prints localized issues one per line, or the plain error.
func fatalIssues(err error) {
	iss, ok := idlkit.AsIssues(err)
	if !ok {
		fatalf("%v", err)
	}
	for _, it := range iss {
		data := map[string]string{}
		if in, ok := it.Params["input"].(string); ok {
			data["input"] = in
		}
		path := it.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", path, it.Code, i18n.T(it.Code, data))
		if it.Hint != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", it.Hint)
		}
	}
	os.Exit(1)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
