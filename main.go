package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lucylang/golucy/compiler"
	"github.com/lucylang/golucy/dump"
	"github.com/lucylang/golucy/logger"
	"github.com/lucylang/golucy/parser"
	"github.com/lucylang/golucy/scanner"
	"github.com/lucylang/golucy/vm"
)

func main() {
	compileOnly := flag.Bool("c", false, "compile to bytecode instead of running")
	output := flag.String("o", "", "bytecode output path (defaults to the source path with a .luc extension)")
	disasm := flag.Bool("d", false, "print the compiled program and exit")
	trace := flag.Bool("trace", false, "log every executed instruction")
	flag.Parse()

	if flag.NArg() > 0 {
		if err := runFile(flag.Arg(0), *compileOnly, *output, *disasm, *trace); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		return
	}

	repl(*trace)
}

func runFile(fileName string, compileOnly bool, output string, disasm, trace bool) error {
	program, err := loadProgram(fileName)
	if err != nil {
		return err
	}

	if disasm {
		fmt.Print(program.String())
		return nil
	}

	if compileOnly {
		if output == "" {
			output = strings.TrimSuffix(fileName, ".lucy") + ".luc"
		}

		return writeDump(program, output)
	}

	var opts []vm.Option
	if trace {
		opts = append(opts, vm.WithTrace())
	}

	if err := vm.New(opts...).Run(program); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}

	return nil
}

func loadProgram(fileName string) (*compiler.Program, error) {
	if strings.HasSuffix(fileName, ".luc") {
		file, err := os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		return dump.Decode(file)
	}

	text, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	tokens, err := scanner.New(string(text)).Scan()
	if err != nil {
		return nil, fmt.Errorf("scanning failed: %w", err)
	}

	program, errs := parser.New(tokens).Parse()
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Println(err)
		}

		return nil, fmt.Errorf("parsing failed with %d errors", len(errs))
	}

	return compiler.Compile(program)
}

func writeDump(program *compiler.Program, output string) error {
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := dump.Encode(file, program); err != nil {
		return err
	}

	log := logger.Logger()
	log.Info().Str("path", output).Msg("bytecode written")
	return nil
}

func repl(trace bool) {
	fmt.Println("Welcome to golucy (version 0.1.0)!")

	var opts []vm.Option
	if trace {
		opts = append(opts, vm.WithTrace())
	}

	comp := compiler.New()
	machine := vm.New(opts...)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return
			}

			fmt.Println(err)
			continue
		}

		tokens, err := scanner.New(text).Scan()
		if err != nil {
			fmt.Printf("Scanning failed: %s\n", err.Error())
			continue
		}

		program, errs := parser.New(tokens).Parse()
		if len(errs) > 0 {
			for _, err := range errs {
				fmt.Println(err.Error())
			}

			continue
		}

		compiled, entry, err := comp.Append(program)
		if err != nil {
			fmt.Printf("Compile error: %s\n", err.Error())
			continue
		}

		if err := machine.RunFrom(compiled, entry); err != nil {
			fmt.Printf("Runtime error: %s\n", err.Error())
		}
	}
}
