package tricli

import (
	"fmt"
	"path/filepath"
	"strings"

	"oss.terrastruct.com/util-go/xmain"

	"oss.terrastruct.com/trident/lib/version"
	"oss.terrastruct.com/trident/trilayouts"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--layout=hierarchical] [--config=file.toml] file.json [file.layout.json | file.layout.msgpack]
  %[1]s batch file.json ...
  %[1]s layouts
  %[1]s validate file.json

%[1]s lays out the diagram in file.json and writes the positioned boxes to file.layout.json.
The output format follows the output extension unless --format is given.

Use - to have %[1]s read from stdin or write to stdout.

Flags:
%[3]s

Subcommands:
  %[1]s batch file.json ... - Lays out every file concurrently, writing file.layout.json next to each
  %[1]s layouts - Lists available layout algorithms with short help
  %[1]s validate file.json - Validates file.json
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}

func layoutsCmd(ms *xmain.State) {
	var lines []string
	for i, info := range trilayouts.Algorithms() {
		l := fmt.Sprintf("%s - %s", info.Name, info.ShortHelp)
		if i == 0 {
			l = fmt.Sprintf("%s (default) - %s", info.Name, info.ShortHelp)
		}
		lines = append(lines, l)
	}
	fmt.Fprintf(ms.Stdout, "Available layout algorithms:\n%s\n", strings.Join(lines, "\n"))
}
