package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/binio"
	"github.com/prop-tools/propbin/debug"
	"github.com/prop-tools/propbin/unhash"
)

func propbinMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: missing input path", cli.ErrUsage)
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: at most one input and one output", cli.ErrUsage)
	}
	input := args[0]
	output := ""
	if len(args) == 2 {
		output = args[1]
	}
	conv := &converter{cfg: cfg}
	if cfg.Recursive {
		return conv.runDir(input, output)
	}
	return conv.runOnce(input, output)
}

type converter struct {
	cfg      *MainConfig
	unhasher *unhash.Unhasher

	inputDir  string
	outputDir string
}

func (c *converter) runDir(inputDir, outputDir string) error {
	if c.cfg.InputFormat == "" {
		return fmt.Errorf("%w: recursive run needs --input-format", cli.ErrUsage)
	}
	format, err := binio.Lookup(c.cfg.InputFormat)
	if err != nil {
		return err
	}
	ext := format.DefaultExtension()
	if ext == "" {
		return fmt.Errorf("%w: format %q has no default extension", binio.ErrUnknownFormat, format.Name())
	}
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("input directory %q doesn't exist", inputDir)
	}
	c.inputDir, c.outputDir = inputDir, outputDir
	return filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		if err := c.runOnce(path, ""); err != nil {
			// A broken file should not stop the walk; report and move on.
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		}
		return nil
	})
}

func (c *converter) runOnce(inputFile, outputFile string) error {
	start := time.Now()
	c.logf("reading %s", inputFile)
	data, err := readInput(inputFile)
	if err != nil {
		return err
	}

	inFormat, err := pickFormat(c.cfg.InputFormat, data, inputFile)
	if err != nil {
		return err
	}
	c.logf("parsing as %s", inFormat.Name())
	b := &bin.Bin{}
	if err := inFormat.Read(b, data); err != nil {
		return fmt.Errorf("parsing %s: %w", inputFile, err)
	}

	outName := c.cfg.OutputFormat
	if outName == "" && outputFile == "" {
		outName = inFormat.OppositeName()
	}
	outFormat, err := pickFormat(outName, nil, outputFile)
	if err != nil {
		return err
	}

	if !c.cfg.KeepHashed && !outFormat.OutputAlwaysHashed() {
		c.unhash(b)
	}

	if outputFile == "" {
		if inputFile == "-" {
			outputFile = "-"
		} else {
			outputFile = replaceExt(inputFile, outFormat.DefaultExtension())
			if c.cfg.Recursive && c.outputDir != "" {
				rel, err := filepath.Rel(c.inputDir, outputFile)
				if err != nil {
					return err
				}
				outputFile = filepath.Join(c.outputDir, rel)
			}
		}
	}

	c.logf("serializing as %s", outFormat.Name())
	out, err := c.serialize(outFormat, b, outputFile)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", outputFile, err)
	}
	c.logf("writing %s", outputFile)
	if err := writeOutput(outputFile, out); err != nil {
		return err
	}
	if debug.Timing() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", inputFile, time.Since(start))
	}
	return nil
}

// serialize writes through the format, except that text going to a
// terminal gets colorized.
func (c *converter) serialize(f binio.Format, b *bin.Bin, outputFile string) ([]byte, error) {
	if f.Name() == "text" && outputFile == "-" && isatty.IsTerminal(os.Stdout.Fd()) {
		return binio.WriteText(b, binio.WriteIndent(4), binio.WriteColors(binio.NewColors()))
	}
	return f.Write(b)
}

// unhash lazily loads the dictionaries once; subsequent files in a
// recursive run reuse them.
func (c *converter) unhash(b *bin.Bin) {
	if c.unhasher == nil {
		c.logf("loading hashes from %s", c.cfg.DirHashes)
		dir := c.cfg.DirHashes
		if dir == "" {
			dir = "."
		}
		c.unhasher = unhash.New()
		for _, name := range []string{
			"hashes.binentries.txt",
			"hashes.binhashes.txt",
			"hashes.bintypes.txt",
			"hashes.binfields.txt",
		} {
			if !c.unhasher.LoadFNV1a(filepath.Join(dir, name)) && debug.Unhash() {
				fmt.Fprintf(os.Stderr, "no dictionary at %s\n", filepath.Join(dir, name))
			}
		}
		for _, name := range []string{"hashes.game.txt", "hashes.lcu.txt"} {
			if !c.unhasher.LoadXXH64(filepath.Join(dir, name)) && debug.Unhash() {
				fmt.Fprintf(os.Stderr, "no dictionary at %s\n", filepath.Join(dir, name))
			}
		}
	}
	c.logf("unhashing")
	c.unhasher.Bin(b)
}

func (c *converter) logf(format string, args ...any) {
	if !c.cfg.Verbose {
		return
	}
	msg := fmt.Sprintf("propbin: "+format, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		msg = color.CyanString("%s", msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}

func pickFormat(name string, data []byte, fileName string) (binio.Format, error) {
	if name != "" {
		return binio.Lookup(name)
	}
	f, err := binio.Guess(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w; known formats: %s", err, formatNames())
	}
	return f, nil
}

func formatNames() string {
	names := []string{}
	for _, f := range binio.Formats() {
		names = append(names, f.Name())
	}
	return strings.Join(names, ", ")
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if parent := filepath.Dir(path); parent != "." && parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
