package tricli

import (
	"context"

	"oss.terrastruct.com/util-go/xdefer"
	"oss.terrastruct.com/util-go/xmain"

	"oss.terrastruct.com/trident/trigraph"
)

func validateCmd(_ context.Context, ms *xmain.State) (err error) {
	defer xdefer.Errorf(&err, "failed to validate")

	ms.Opts = xmain.NewOpts(ms.Env, ms.Opts.Flags.Args()[1:])
	if len(ms.Opts.Args) == 0 {
		return xmain.UsageErrorf("validate must be passed an input file to be validated")
	}

	inputPath := ms.Opts.Args[0]
	if inputPath != "-" {
		inputPath = ms.AbsPath(inputPath)
	}

	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}

	d, err := trigraph.ParseDiagram(input)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("%s is valid: %d groups, %d nodes, %d edges", ms.HumanPath(inputPath), len(d.Groups), len(d.Nodes), len(d.Edges))
	return nil
}
