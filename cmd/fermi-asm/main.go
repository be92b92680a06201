// Command fermi-asm is a thin composition root over the assembly core
// (§4.J): it loads a small read set, builds the test-scaffold FM-index
// oracle over it (real index construction stays out of scope, see
// fmtestindex's package doc), runs either the unitig or the joiner
// worker pool, and writes the resulting graph to stdout. Grounded on
// cmd/bio-fusion/main.go's flag-then-grail.Init-then-dispatch shape.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/BioinformaticsArchive/fermi/biosimd"
	"github.com/BioinformaticsArchive/fermi/fermiasm"
	"github.com/BioinformaticsArchive/fermi/fmtestindex"
	"github.com/BioinformaticsArchive/fermi/graph"
	"github.com/BioinformaticsArchive/fermi/worker"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fermi-asm -reads <fasta> [-mode unitig|join] [flags]

Runs the core unitig-construction or unambiguous-joining pass over the
reads in the given FASTA file and writes the resulting graph (or, for
-mode join, one line per read's join outcome) to stdout.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage

	opts := fermiasm.DefaultOpts()
	readsPath := flag.String("reads", "", "Path to a FASTA file of reads.")
	mode := flag.String("mode", "unitig", "Pass to run: unitig or join.")
	flag.IntVar(&opts.MinMatch, "min-match", opts.MinMatch, "Minimum overlap length.")
	flag.IntVar(&opts.NThreads, "threads", opts.NThreads, "Worker goroutine count.")
	flag.IntVar(&opts.MaxArc, "max-arc", opts.MaxArc, "Max arcs retained per endpoint.")
	flag.IntVar(&opts.MinEl, "min-el", opts.MinEl, "Min length for a single-read tip to survive.")
	flag.Float64Var(&opts.MinDRatio0, "min-dratio0", opts.MinDRatio0, "Dominance ratio applied to arcs when a graph is read.")
	flag.IntVar(&opts.MaxISize, "max-isize", opts.MaxISize, "Insert-size cutoff for paired-read accumulation.")
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()

	if *readsPath == "" {
		log.Error.Printf("-reads is required")
		os.Exit(2)
	}

	reads, err := readFasta(*readsPath)
	if err != nil {
		log.Error.Printf("%v", errors.E(err, "reading reads"))
		os.Exit(1)
	}
	oracle := fmtestindex.NewFromBases(reads)
	nReads := uint64(len(reads)) * 2

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	switch *mode {
	case "unitig":
		result := worker.RunUnitig(oracle, opts, nReads)
		g := worker.BuildGraph(result, log.Info.Printf)
		for _, n := range g.Nodes {
			if err := graph.WriteNode(out, n); err != nil {
				log.Error.Printf("%v", errors.E(err, "writing graph"))
				os.Exit(1)
			}
		}
	case "join":
		outcomes := worker.RunJoin(oracle, opts, nReads)
		for _, o := range outcomes {
			fmt.Fprintf(out, "%d\t%d\t%d\n", o.Rid, o.Code, o.Begin)
		}
	default:
		log.Error.Printf("unknown -mode %q, want unitig or join", *mode)
		os.Exit(2)
	}

	log.Info.Printf("fermi-asm: done")
}

// readFasta reads a minimal FASTA file into a slice of base strings, one
// per record, concatenating any wrapped sequence lines. Each record is
// cleaned in place with biosimd.CleanASCIISeqInplace (capitalize, replace
// anything non-ACGT with 'N') before the index oracle ever sees it, the
// same normalization grailbio/bio's fusion-calling preprocessor applies to
// incoming read sequences; biosimd.IsNonACGTNPresent drives the log line
// reporting how many records needed it.
func readFasta(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reads []string
	var cur []byte
	dirty := 0
	flush := func() {
		if cur == nil {
			return
		}
		if biosimd.IsNonACGTNPresent(cur) {
			dirty++
			biosimd.CleanASCIISeqInplace(cur)
		}
		reads = append(reads, string(cur))
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<24)
	for sc.Scan() {
		line := sc.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			cur = []byte{}
			continue
		}
		cur = append(cur, line...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	if dirty > 0 {
		log.Info.Printf("readFasta: cleaned %d/%d records with non-ACGTN bases", dirty, len(reads))
	}
	return reads, nil
}
