package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spacesedan/bankreviews/internal/pipeline"
)

func main() {
	only := flag.String("stages", "", "comma separated stages to run, in order (default: all)")
	flag.Parse()

	stages := pipeline.Stages
	if *only != "" {
		stages = nil
		for _, name := range strings.Split(*only, ",") {
			st, err := pipeline.ParseStage(strings.TrimSpace(name))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			stages = append(stages, st)
		}
	}
	os.Exit(pipeline.Main("pipeline", stages...))
}
