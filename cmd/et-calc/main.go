package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chrissnell/evapo/internal/etservice"
	"github.com/chrissnell/evapo/internal/log"
	"github.com/chrissnell/evapo/pkg/config"
	"github.com/chrissnell/evapo/pkg/et"
)

func main() {
	var (
		input   = flag.String("input", "-", "Path to a JSON request file, or - for stdin")
		methods = flag.String("method", config.DefaultMethod, "Comma separated methods to evaluate, or 'all'")
		asJSON  = flag.Bool("json", false, "Write results as JSON instead of a table")
		debug   = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-method fao56,makkink] [-json] [-input request.json]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	selected, err := parseMethods(*methods)
	if err != nil {
		log.Fatalf("%v", err)
	}

	req, err := readRequest(*input)
	if err != nil {
		log.Fatalf("could not read request: %v", err)
	}

	svc := etservice.New(&config.ConfigData{}, nil, nil, nil, log.Named("et-calc"))

	var out []etservice.Result
	failed := false
	for _, m := range selected {
		res, err := svc.EvaluateRequest(m, req)
		if err != nil {
			log.Errorf("%s: %v", m, err)
			failed = true
			continue
		}
		out = append(out, res)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("could not encode results: %v", err)
		}
	} else {
		printTable(os.Stdout, out)
	}

	if failed {
		os.Exit(1)
	}
}

func parseMethods(s string) ([]et.Method, error) {
	if strings.TrimSpace(s) == "all" {
		return et.Methods(), nil
	}
	var out []et.Method
	for _, name := range strings.Split(s, ",") {
		m, err := et.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func readRequest(path string) (*etservice.Request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req etservice.Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func printTable(w io.Writer, results []etservice.Result) {
	if len(results) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "date\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t", r.Method)
	}
	fmt.Fprintln(tw)

	for i, day := range results[0].Dates {
		fmt.Fprintf(tw, "%s\t", day)
		for _, r := range results {
			if r.ET[i] == nil {
				fmt.Fprint(tw, "-\t")
				continue
			}
			fmt.Fprintf(tw, "%.2f\t", *r.ET[i])
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
