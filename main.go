package main

import (
	"oss.terrastruct.com/util-go/xmain"

	"oss.terrastruct.com/trident/tricli"
)

func main() {
	xmain.Main(tricli.Run)
}
