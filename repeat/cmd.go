package repeat

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"lra/align"
	"lra/graph"
	"lra/seqstore"
	"lra/utils"

	"github.com/jwaldrip/odin/cli"
)

// driver passes over resolveRepeats before giving up on new repeats
const maxResolvePasses = 5

// Resolve is the "rr" subcommand: load the graph, the reads and their
// alignments, then classify and untangle repeats until a pass resolves
// nothing new or maxResolvePasses passes have run.
func Resolve(c cli.Command) {
	fmt.Println(c.Flags(), c.Parent().Flags())

	opt, succ := utils.CheckGlobalArgs(c)
	if !succ {
		log.Fatalf("[Resolve] check global args failed\n")
	}
	runtime.GOMAXPROCS(opt.NumCPU)
	if opt.Cpuprofile != "" {
		profp, err := os.Create(opt.Cpuprofile)
		if err != nil {
			log.Fatalf("[Resolve] create cpu profile file: %s failed, err: %v\n", opt.Cpuprofile, err)
		}
		defer profp.Close()
		if err := pprof.StartCPUProfile(profp); err != nil {
			log.Fatalf("[Resolve] start cpu profile err: %v\n", err)
		}
		defer pprof.StopCPUProfile()
	}
	cfg, err := utils.ParseCfg(opt.CfgFn)
	if err != nil {
		log.Fatalf("[Resolve] parse cfg file: %s err: %v\n", opt.CfgFn, err)
	}

	graphfn := c.Flag("graph").String()
	readsfn := c.Flag("reads").String()
	bamfn := c.Flag("bam").String()
	if graphfn == "" || readsfn == "" || bamfn == "" {
		log.Fatalf("[Resolve] args 'graph', 'reads' and 'bam' must be set\n")
	}

	g := graph.LoadGraphFromFn(graphfn)
	fmt.Printf("[Resolve] loaded graph with %d edges\n", g.EdgeNum())
	store := seqstore.NewStore()
	store.LoadReads(readsfn)
	alignments := align.LoadAlignmentsFromBam(bamfn, g, store, opt.NumCPU)
	aligner := align.NewAligner(g, alignments)

	r := NewResolver(g, store, aligner, cfg)
	fmt.Printf("[Resolve] unique coverage threshold: %d\n", r.GetUniqueCovThreshold())

	r.FindRepeats()
	totalResolved := 0
	for pass := 0; pass < maxResolvePasses; pass++ {
		resolved := r.ResolveRepeats()
		totalResolved += resolved
		if resolved == 0 {
			break
		}
		r.FindRepeats()
	}
	totalResolved += r.ResolveSimpleRepeats()
	r.FinalizeGraph()
	fmt.Printf("[Resolve] total resolved repeats: %d\n", totalResolved)

	graph.WriteGraphToFn(g, opt.Prefix+".resolved.graph.zst")
	graph.GraphvizGraph(g, opt.Prefix+".resolved.dot")
}
