package main

import (
	"os"

	"k8s.io/cli-runtime/pkg/genericiooptions"

	"github.com/hashmap-kz/pseudoflow-operator/cmd/pseudoflow"
)

func main() {
	streams := genericiooptions.IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
	root := pseudoflow.NewRootCmd(streams)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
