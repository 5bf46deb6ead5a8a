// Package shell implements the interactive command loop over an attached
// filesystem: the `vfs$ ` prompt, whitespace tokenisation, argument-count
// checking and the command dispatch table. Failures never end the session;
// each is reported as a single `ERROR(op: message)` line on the output.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/minivfs/go-minivfs/filesystem/minifat"
)

// Prompt is printed before every command line.
const Prompt = "vfs$ "

// Shell runs commands against one attached filesystem.
type Shell struct {
	fs  *minifat.FileSystem
	in  io.Reader
	out io.Writer
	log *logrus.Logger
}

type command struct {
	args int
	run  func(s *Shell, argv []string) bool
}

// commands maps names to their fixed argument count and implementation.
// A handler returns true to end the session.
var commands = map[string]command{
	"ls":    {0, (*Shell).ls},
	"mkdir": {1, (*Shell).mkdir},
	"cd":    {1, (*Shell).cd},
	"pwd":   {0, (*Shell).pwd},
	"rmdir": {1, (*Shell).rmdir},
	"get":   {2, (*Shell).get},
	"put":   {2, (*Shell).put},
	"cat":   {1, (*Shell).cat},
	"cp":    {2, (*Shell).cp},
	"mv":    {2, (*Shell).mv},
	"rm":    {1, (*Shell).rm},
	"exit":  {0, func(*Shell, []string) bool { return true }},
}

// New builds a shell reading commands from in and writing results to out.
// A nil logger discards diagnostics.
func New(fs *minifat.FileSystem, in io.Reader, out io.Writer, log *logrus.Logger) *Shell {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Shell{fs: fs, in: in, out: out, log: log}
}

// Run reads and executes command lines until `exit` or end of input.
func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, Prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if s.Exec(scanner.Text()) {
			return nil
		}
	}
}

// Exec runs a single command line and reports whether the session should
// end.
func (s *Shell) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, argv := fields[0], fields[1:]
	s.log.Debugf("exec %q", fields)

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintln(s.out, "ERROR(input: command not found)")
		return false
	}
	if len(argv) < cmd.args {
		fmt.Fprintf(s.out, "ERROR(input: '%s' - too few arguments)\n", name)
		return false
	}
	if len(argv) > cmd.args {
		fmt.Fprintf(s.out, "ERROR(input: '%s' - too many arguments)\n", name)
		return false
	}
	return cmd.run(s, argv)
}

func (s *Shell) ls([]string) bool {
	for _, e := range s.fs.List() {
		fmt.Fprintf(s.out, "%-25s %02d-%02d-%04d", e.Name, e.Day, e.Month, int(e.Year)+1900)
		if e.IsDir() {
			fmt.Fprintln(s.out, " DIR")
		} else {
			fmt.Fprintf(s.out, " %04d\n", e.Size)
		}
	}
	return false
}

func (s *Shell) mkdir(argv []string) bool {
	name := argv[0]
	switch err := s.fs.Mkdir(name); {
	case err == nil:
	case errors.Is(err, minifat.ErrNameTooLong):
		fmt.Fprintf(s.out, "ERROR(mkdir: cannot create directory '%s' - name too long)\n", name)
	case errors.Is(err, minifat.ErrExists):
		fmt.Fprintf(s.out, "ERROR(mkdir: cannot create directory '%s' - entry exists)\n", name)
	case errors.Is(err, minifat.ErrFull):
		fmt.Fprintf(s.out, "ERROR(mkdir: cannot create directory '%s' - disk is full)\n", name)
	default:
		fmt.Fprintf(s.out, "ERROR(mkdir: %v)\n", err)
	}
	return false
}

func (s *Shell) cd(argv []string) bool {
	name := argv[0]
	switch err := s.fs.Cd(name); {
	case err == nil:
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(cd: %s not in directory)\n", name)
	case errors.Is(err, minifat.ErrNotADirectory):
		fmt.Fprintf(s.out, "ERROR(cd: %s not a directory)\n", name)
	default:
		fmt.Fprintf(s.out, "ERROR(cd: %v)\n", err)
	}
	return false
}

func (s *Shell) pwd([]string) bool {
	fmt.Fprintln(s.out, s.fs.Pwd())
	return false
}

func (s *Shell) rmdir(argv []string) bool {
	name := argv[0]
	switch err := s.fs.Rmdir(name); {
	case err == nil:
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(rmdir: %s not in directory)\n", name)
	case errors.Is(err, minifat.ErrNotADirectory):
		fmt.Fprintf(s.out, "ERROR(rmdir: %s not a directory)\n", name)
	case errors.Is(err, minifat.ErrInvalidEntry):
		fmt.Fprintf(s.out, "ERROR(rmdir: %s is an invalid directory ('.' or '..'))\n", name)
	case errors.Is(err, minifat.ErrNotEmpty):
		fmt.Fprintf(s.out, "ERROR(rmdir: %s is not empty)\n", name)
	default:
		fmt.Fprintf(s.out, "ERROR(rmdir: %v)\n", err)
	}
	return false
}

func (s *Shell) get(argv []string) bool {
	src, dst := argv[0], argv[1]

	fi, err := os.Stat(src)
	if err != nil {
		fmt.Fprintf(s.out, "ERROR(get: cannot find file %s)\n", src)
		return false
	}
	f, err := os.Open(src)
	if err != nil {
		fmt.Fprintf(s.out, "ERROR(get: cannot find file %s)\n", src)
		return false
	}
	defer f.Close()

	switch err := s.fs.Ingest(dst, f, fi.Size()); {
	case err == nil:
	case errors.Is(err, minifat.ErrNameTooLong):
		fmt.Fprintln(s.out, "ERROR(get: name too long)")
	case errors.Is(err, minifat.ErrExists):
		fmt.Fprintln(s.out, "ERROR(get: name already exists)")
	case errors.Is(err, minifat.ErrFull):
		fmt.Fprintln(s.out, "ERROR(get: disk is full)")
	default:
		fmt.Fprintf(s.out, "ERROR(get: %v)\n", err)
	}
	return false
}

func (s *Shell) put(argv []string) bool {
	src, dst := argv[0], argv[1]

	f, err := s.fs.Open(src)
	switch {
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(put: no file with name '%s')\n", src)
		return false
	case errors.Is(err, minifat.ErrNotAFile):
		fmt.Fprintf(s.out, "ERROR(put: '%s' is not a file)\n", src)
		return false
	case err != nil:
		fmt.Fprintf(s.out, "ERROR(put: %v)\n", err)
		return false
	}

	out, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(s.out, "ERROR(put: cannot create file %s)\n", dst)
		return false
	}
	defer out.Close()

	if _, err := io.Copy(out, f); err != nil {
		fmt.Fprintf(s.out, "ERROR(put: %v)\n", err)
	}
	return false
}

func (s *Shell) cat(argv []string) bool {
	name := argv[0]

	f, err := s.fs.Open(name)
	switch {
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(cat: no file with name '%s')\n", name)
		return false
	case errors.Is(err, minifat.ErrNotAFile):
		fmt.Fprintf(s.out, "ERROR(cat: '%s' is not a file)\n", name)
		return false
	case err != nil:
		fmt.Fprintf(s.out, "ERROR(cat: %v)\n", err)
		return false
	}

	if _, err := io.Copy(s.out, f); err != nil {
		fmt.Fprintf(s.out, "ERROR(cat: %v)\n", err)
	}
	return false
}

func (s *Shell) cp(argv []string) bool {
	s.copyOrMove("cp", s.fs.Copy, argv)
	return false
}

func (s *Shell) mv(argv []string) bool {
	s.copyOrMove("mv", s.fs.Move, argv)
	return false
}

func (s *Shell) copyOrMove(op string, f func(string, string) error, argv []string) {
	src, dst := argv[0], argv[1]
	switch err := f(src, dst); {
	case err == nil:
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(%s: no file with name '%s')\n", op, src)
	case errors.Is(err, minifat.ErrNotAFile):
		fmt.Fprintf(s.out, "ERROR(%s: '%s' is not a file)\n", op, src)
	case errors.Is(err, minifat.ErrExists):
		fmt.Fprintf(s.out, "ERROR(%s: name already exists)\n", op)
	case errors.Is(err, minifat.ErrNameTooLong):
		fmt.Fprintf(s.out, "ERROR(%s: name too long)\n", op)
	case errors.Is(err, minifat.ErrFull):
		fmt.Fprintf(s.out, "ERROR(%s: disk is full)\n", op)
	default:
		fmt.Fprintf(s.out, "ERROR(%s: %v)\n", op, err)
	}
}

func (s *Shell) rm(argv []string) bool {
	name := argv[0]
	switch err := s.fs.Remove(name); {
	case err == nil:
	case errors.Is(err, minifat.ErrNotFound):
		fmt.Fprintf(s.out, "ERROR(rm: no file with name '%s')\n", name)
	case errors.Is(err, minifat.ErrNotAFile):
		fmt.Fprintf(s.out, "ERROR(rm: '%s' is not a file)\n", name)
	default:
		fmt.Fprintf(s.out, "ERROR(rm: %v)\n", err)
	}
	return false
}
