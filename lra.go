package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"lra/repeat"

	"github.com/jwaldrip/odin/cli"
)

var app = cli.New("1.0.0", "Long read assembler repeat resolution", func(c cli.Command) {})

func init() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6092", nil))
	}()
	app.DefineStringFlag("C", "lra.cfg", "configure file")
	app.DefineStringFlag("cpuprofile", "", "write cpu profile to file")
	app.DefineStringFlag("p", "lra", "prefix of the output file")
	app.DefineIntFlag("t", 1, "number of CPU used")
	rr := app.DefineSubCommand("rr", "classify repetitive edges and resolve repeats with long reads", repeat.Resolve)
	{
		rr.DefineStringFlag("graph", "", "assembly graph file (zstd edge lines)")
		rr.DefineStringFlag("reads", "", "long reads file (fasta/fastq, optionally gzipped)")
		rr.DefineStringFlag("bam", "", "read-to-graph alignments (BAM, edge references)")
	}
}

func main() {
	app.Start()
}
