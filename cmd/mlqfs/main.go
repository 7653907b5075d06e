package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piergabory/mlqfs/pkg/scheduler"
	"github.com/piergabory/mlqfs/pkg/sink"
	"github.com/piergabory/mlqfs/pkg/workload"
)

type opts struct {
	debug bool
	space bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "mlqfs [input] [output]",
		Short: "Multi-level feedback queue scheduler simulator",
		Long: `mlqfs replays a workload of process arrival times and CPU/I-O behaviours
through a three-level feedback queue scheduler and prints the resulting
event trace and final usage report.

Input is read from the first positional argument, or stdin if omitted.
Output is written to the second positional argument, or stdout if omitted.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, args)
		},
	}

	root.Flags().BoolVar(&o.debug, "debug", false, "log internal tick-loop tracing to stderr")
	root.Flags().BoolVar(&o.space, "space", false, "use space-separated columns instead of tab-separated")

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(o opts, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	if closer, ok := in.(io.Closer); ok {
		defer closer.Close()
	}

	out, err := openOutput(args)
	if err != nil {
		return err
	}
	if closer, ok := out.(io.Closer); ok {
		defer closer.Close()
	}

	procs, err := workload.Load(in)
	if err != nil {
		return fmt.Errorf("mlqfs: %w", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if o.debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	variant := sink.VariantTab
	if o.space {
		variant = sink.VariantSpace
	}

	s := scheduler.New(sink.NewTextSink(out, variant), log)
	s.Initialize(procs)
	s.RunToCompletion()

	return nil
}

func openInput(args []string) (io.Reader, error) {
	if len(args) < 1 || args[0] == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("mlqfs: open input: %w", err)
	}
	return f, nil
}

func openOutput(args []string) (io.Writer, error) {
	if len(args) < 2 || args[1] == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(args[1])
	if err != nil {
		return nil, fmt.Errorf("mlqfs: create output: %w", err)
	}
	return f, nil
}
