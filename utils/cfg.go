package utils

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// CfgInfo carries the assembly parameters the repeat stage needs. The
// cfg file uses the same "[section]\nkey value" layout as the rest of
// the pipeline configuration.
type CfgInfo struct {
	MinRepeatResSupport float64 // confidence floor for matched connections
	OutPathsRatio       int     // divisor for the read-extension support test
	UniqueEdgeLen       int     // paths longer than this get their repeat mark undone
	MinOverlap          int     // minimum read overlap of the assembly
	MinBridgeSpan       int     // placeholder read span between adjacent unique edges
	UnevenCoverage      bool    // metagenome mode
}

func DefaultCfg() (cfgInfo CfgInfo) {
	cfgInfo.MinRepeatResSupport = 0.5
	cfgInfo.OutPathsRatio = 5
	cfgInfo.UniqueEdgeLen = 50000
	cfgInfo.MinOverlap = 5000
	cfgInfo.MinBridgeSpan = 100
	cfgInfo.UnevenCoverage = false
	return cfgInfo
}

func ParseCfg(fn string) (cfgInfo CfgInfo, e error) {
	var inFile *os.File
	var err error
	if inFile, err = os.Open(fn); err != nil {
		log.Fatal(err)
	}
	defer inFile.Close()
	cfgInfo = DefaultCfg()
	reader := bufio.NewReader(inFile)
	eof := false
	for !eof {
		var line string
		line, err = reader.ReadString('\n')
		if err == io.EOF {
			err = nil
			eof = true
		} else if err != nil {
			log.Fatal(err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0][0] == '[' || fields[0][0] == '#' {
			continue
		}
		if len(fields) < 2 {
			log.Fatalf("[ParseCfg] line: %s set error\n", line)
		}
		switch fields[0] {
		case "min_repeat_res_support":
			var v float64
			if v, err = strconv.ParseFloat(fields[1], 64); err != nil {
				log.Fatalf("[ParseCfg] min_repeat_res_support: %v set error\n", fields[1])
			}
			cfgInfo.MinRepeatResSupport = v
		case "out_paths_ratio":
			if cfgInfo.OutPathsRatio, err = strconv.Atoi(fields[1]); err != nil {
				log.Fatalf("[ParseCfg] out_paths_ratio: %v set error\n", fields[1])
			}
		case "unique_edge_length":
			if cfgInfo.UniqueEdgeLen, err = strconv.Atoi(fields[1]); err != nil {
				log.Fatalf("[ParseCfg] unique_edge_length: %v set error\n", fields[1])
			}
		case "min_overlap":
			if cfgInfo.MinOverlap, err = strconv.Atoi(fields[1]); err != nil {
				log.Fatalf("[ParseCfg] min_overlap: %v set error\n", fields[1])
			}
		case "min_bridge_span":
			if cfgInfo.MinBridgeSpan, err = strconv.Atoi(fields[1]); err != nil {
				log.Fatalf("[ParseCfg] min_bridge_span: %v set error\n", fields[1])
			}
		case "uneven_coverage":
			cfgInfo.UnevenCoverage = fields[1] == "1" || fields[1] == "true"
		default:
			// unknown keys belong to other pipeline stages
		}
	}
	return cfgInfo, err
}
