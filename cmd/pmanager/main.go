// Command pmanager is a line-oriented shell for driving a kernel.Kernel
// interactively, grounded on the source kernel's own pmanager.c: the
// same prompt, the same five commands, and the same "print a one-line
// SUCCESS/ERROR status" convention.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hjeongb0320/mlfqkernel/kernel"
)

const prompt = "(PMG) : "

func main() {
	os.Exit(run(os.Stdin, os.Stdout))
}

func run(in io.Reader, out io.Writer) int {
	k, _, err := kernel.NewKernel("pmanager")
	if err != nil {
		fmt.Fprintf(out, "ERROR : failed to start kernel: %v\n", err)
		return 1
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return 0
		}
		line := scanner.Text()
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == "exit" {
			return 0
		}
		dispatch(k, out, line)
	}
}

func dispatch(k *kernel.Kernel, out io.Writer, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "list":
		runList(k, out)
	case "kill":
		runKill(k, out, args)
	case "execute":
		runExecute(k, out, args)
	case "memlim":
		runMemlim(k, out, args)
	case "exit":
		os.Exit(0)
	default:
		fmt.Fprintf(out, "ERROR : unknown command %q\n", args[0])
	}
}

func runList(k *kernel.Kernel, out io.Writer) {
	for _, line := range k.ProcDump() {
		fmt.Fprintln(out, line)
	}
}

func runKill(k *kernel.Kernel, out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "ERROR : usage: kill <pid>")
		return
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(out, "ERROR : bad pid %q\n", args[1])
		return
	}
	if err := k.Kill(pid); err != nil {
		fmt.Fprintf(out, "ERROR : pid %d\n", pid)
		return
	}
	fmt.Fprintf(out, "SUCCESS : pid %d killed\n", pid)
}

func runExecute(k *kernel.Kernel, out io.Writer, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(out, "ERROR : usage: execute <path> <stacksize>")
		return
	}
	stackPages, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(out, "ERROR : bad stacksize %q\n", args[2])
		return
	}
	// A fresh process is forked off pmanager itself and immediately
	// exec2'd into the requested program, mirroring pmanager.c's
	// fork()+exec2() pair; the "image" (entry point and size) is a
	// placeholder since ELF loading is out of this package's scope.
	pid, err := k.Fork(1)
	if err != nil {
		fmt.Fprintf(out, "ERROR : fork failed for %q: %v\n", args[1], err)
		return
	}
	if err := k.Exec2(pid, args[1], 0, kernel.PGSize, stackPages); err != nil {
		fmt.Fprintf(out, "ERROR : execute %q: %v\n", args[1], err)
		return
	}
	fmt.Fprintf(out, "SUCCESS : pid %d running %s\n", pid, args[1])
}

func runMemlim(k *kernel.Kernel, out io.Writer, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(out, "ERROR : usage: memlim <pid> <limit>")
		return
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(out, "ERROR : bad pid %q\n", args[1])
		return
	}
	limitPages, err := strconv.Atoi(args[2])
	if err != nil || limitPages < 0 {
		fmt.Fprintf(out, "ERROR : bad limit %q\n", args[2])
		return
	}
	if err := k.SetMemoryLimit(pid, uintptr(limitPages)*kernel.PGSize); err != nil {
		fmt.Fprintf(out, "ERROR : memlim pid %d: %v\n", pid, err)
		return
	}
	fmt.Fprintln(out, "SUCCESS : set memory limit")
}
