package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/s16arch/s16/asm"
	"github.com/s16arch/s16/emu"
	"github.com/s16arch/s16/linker"
	"github.com/s16arch/s16/obj"
	"github.com/s16arch/s16/state"
)

const usage = `usage:
  s16 assemble [-v] [-l] file.asm.txt
  s16 link [-v] [-o out] main.obj.txt [more.obj.txt ...]
  s16 run [-v] [-i in] [-o out] [-limit n] [-reg-dump] [-mem-dump] file.obj.txt
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "assemble":
		cmdAssemble(os.Args[2:])
	case "link":
		cmdLink(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// baseName strips a path and the conventional file suffixes.
func baseName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{".asm.txt", ".obj.txt", ".exe.txt", ".txt", ".asm", ".obj", ".exe"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

func writeFile(name, text string) {
	if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
		log.Fatalf("%v: %v", name, err)
	}
}

func cmdAssemble(args []string) {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose mode")
	listing := fs.Bool("l", false, "Write the listing file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("assemble: expected one source file, got %v", fs.Args())
	}
	srcName := fs.Arg(0)
	src, err := os.ReadFile(srcName)
	if err != nil {
		log.Fatalf("%v: %v", srcName, err)
	}

	a := &asm.Assembler{Verbose: *verbose}
	ma := a.Assemble(baseName(srcName), string(src))

	if err := ma.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	writeFile(ma.BaseName+".obj.txt", ma.ObjectText)
	writeFile(ma.BaseName+".md.txt", ma.MdText)
	if *listing {
		writeFile(ma.BaseName+".lst.txt", strings.Join(ma.Metadata.PlainLines(), "\n"))
	}
	if ma.NErrors > 0 {
		log.Fatalf("assemble: %d errors detected", ma.NErrors)
	}
}

func cmdLink(args []string) {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose mode")
	out := fs.String("o", "", "Executable output file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		log.Fatalf("link: expected at least one object file")
	}

	var objMds []*obj.ObjMd
	for _, name := range fs.Args() {
		objMds = append(objMds, readObjMd(name))
	}

	lk := &linker.Linker{Verbose: *verbose}
	ls := lk.Link(objMds[0].ModName, objMds)
	for _, e := range ls.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
	if ls.ExeObjMd == nil {
		log.Fatalf("link: %d errors detected", len(ls.Errors))
	}

	exeName := *out
	if exeName == "" {
		exeName = baseName(fs.Arg(0)) + ".exe.txt"
	}
	writeFile(exeName, ls.ExeObjMd.ObjText)
	writeFile(strings.TrimSuffix(exeName, ".exe.txt")+".exe.md.txt", ls.ExeObjMd.MdText)
}

// readObjMd loads an object file and its metadata file when one
// exists alongside it.
func readObjMd(name string) *obj.ObjMd {
	objText, err := os.ReadFile(name)
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}
	om := &obj.ObjMd{ModName: baseName(name), ObjText: string(objText)}
	mdName := baseName(name) + ".md.txt"
	if dir := filepath.Dir(name); dir != "." {
		mdName = filepath.Join(dir, mdName)
	}
	if mdText, err := os.ReadFile(mdName); err == nil {
		om.MdText = string(mdText)
	}
	return om
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose mode")
	input := fs.String("i", "-", "Console input")
	output := fs.String("o", "-", "Console output")
	limit := fs.Int("limit", 0, "Instruction limit, 0 for none")
	regDump := fs.Bool("reg-dump", false, "Dump registers after the run")
	memDump := fs.Bool("mem-dump", false, "Dump nonzero memory after the run")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("run: expected one executable file, got %v", fs.Args())
	}
	name := fs.Arg(0)
	var om *obj.ObjMd
	if strings.HasSuffix(name, ".asm.txt") || strings.HasSuffix(name, ".asm") {
		src, err := os.ReadFile(name)
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
		a := &asm.Assembler{Verbose: *verbose}
		ma := a.Assemble(baseName(name), string(src))
		if err := ma.Err(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			log.Fatalf("run: %d assembly errors detected", ma.NErrors)
		}
		om = ma.ObjMd
	} else {
		om = readObjMd(name)
	}

	core := emu.NewCore()
	core.Verbose = *verbose

	if *input == "-" {
		core.Input = os.Stdin
	} else {
		inf, err := os.Open(*input)
		if err != nil {
			log.Fatalf("%v: %v", *input, err)
		}
		defer inf.Close()
		core.Input = inf
	}

	if *output == "-" {
		core.Output = os.Stdout
	} else {
		ouf, err := os.Create(*output)
		if err != nil {
			log.Fatalf("%v: %v", *output, err)
		}
		defer ouf.Close()
		core.Output = ouf
	}

	if err := core.Boot(om); err != nil {
		log.Fatal(err)
	}
	status := core.Run(*limit)

	if *regDump {
		core.DumpRegisters(os.Stdout)
	}
	if *memDump {
		core.DumpNonzeroMemory(os.Stdout)
	}
	if status != state.STATUS_HALTED {
		log.Fatalf("run: stopped with status %v after %d instructions", status, core.Vec.InstrCount())
	}
}
