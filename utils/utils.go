package utils

import (
	"log"
	"unsafe"

	"github.com/jwaldrip/odin/cli"
)

type ArgsOpt struct {
	Prefix     string
	NumCPU     int
	CfgFn      string
	Cpuprofile string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.Prefix = c.Parent().Flag("p").String()
	if opt.Prefix == "" {
		log.Fatalf("[CheckGlobalArgs] args 'p' not set\n")
	}
	opt.CfgFn = c.Parent().Flag("C").String()
	if opt.CfgFn == "" {
		log.Fatalf("[CheckGlobalArgs] args 'C' not set\n")
	}
	opt.Cpuprofile = c.Parent().Flag("cpuprofile").String()

	var ok bool
	opt.NumCPU, ok = c.Parent().Flag("t").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 't': %v set error\n", c.Parent().Flag("t").String())
	}
	return opt, true
}

func AbsInt(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}

func Bytes2String(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

func BytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return Bytes2String(a) == Bytes2String(b)
}
