package main

import (
	"os"

	"github.com/spacesedan/bankreviews/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main("sentiment", pipeline.StageSentiment))
}
