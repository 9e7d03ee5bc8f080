package main

import (
	"github.com/scott-cotton/cli"
)

// MainConfig carries the conversion flags.
type MainConfig struct {
	KeepHashed   bool   `cli:"name=k aliases=keep-hashed desc='do not run unhasher'"`
	Recursive    bool   `cli:"name=r aliases=recursive desc='run on directory'"`
	Verbose      bool   `cli:"name=v aliases=verbose desc='log more'"`
	InputFormat  string `cli:"name=i aliases=input-format desc='format of input file'"`
	OutputFormat string `cli:"name=o aliases=output-format desc='format of output file'"`
	DirHashes    string `cli:"name=d aliases=dir-hashes desc='directory containing hashes'"`

	Main *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{DirHashes: "hashes"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "propbin").
		WithSynopsis("propbin [opts] input [output]").
		WithDescription(description).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return propbinMain(cfg, cc, args)
		})
}

const description = `propbin converts bin property files between formats.

The input format is guessed from the content or file name unless -i is
given.  Without -o, the output format is guessed from the output path when
one is given; otherwise it is the conventional counterpart of the input
format: binary becomes text and text or json become binary.  An
input or output path of "-" means stdin or stdout.

With -r the input is a directory; every file carrying the input format's
default extension is converted, mirroring the tree under the output
directory when one is given.  -r requires -i.

Unless -k is given, hash dictionaries are loaded from the -d directory
(hashes.binentries.txt, hashes.binhashes.txt, hashes.bintypes.txt,
hashes.binfields.txt for FNV-1a; hashes.game.txt, hashes.lcu.txt for
XXH64) and known hashes are replaced by their strings before writing any
format that keeps them readable.`
