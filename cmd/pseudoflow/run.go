package pseudoflow

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	"sigs.k8s.io/yaml"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/engine"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

type runOptions struct {
	filename   string
	namespace  string
	operatorNS string
	setVars    []string
}

type runRunOptions struct {
	configFlags *genericclioptions.ConfigFlags
	streams     genericiooptions.IOStreams
	runOpts     runOptions
}

// NewRunCmd builds the `run` subcommand: load a FlowSpec from -f, build
// cluster clients from the usual kubectl connection flags, and execute it
// once through engine.Runner, the same path a reconcile loop would take.
func NewRunCmd(streams genericiooptions.IOStreams) *cobra.Command {
	cfgFlags := genericclioptions.NewConfigFlags(true)
	ro := runOptions{}

	cmd := &cobra.Command{
		Use:   "run -f FILE",
		Short: "Execute a PseudoFlow step sequence once against the current cluster",
		Example: `
  # Run a flow from a local file
  pseudoflow run -f flow.yaml

  # Override the default namespace steps apply into
  pseudoflow run -f flow.yaml --namespace staging

  # Seed extra vars on top of the file's own vars block
  pseudoflow run -f flow.yaml --set region=eu-west-1 --set tier=gold
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ro.filename == "" {
				return fmt.Errorf("--filename/-f is required")
			}
			run := &runRunOptions{configFlags: cfgFlags, streams: streams, runOpts: ro}
			return runFlow(cmd.Context(), run)
		},
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&ro.filename, "filename", "f", "", "FlowSpec YAML file to execute.")
	f.StringVar(&ro.namespace, "namespace", "", "Namespace steps apply into when a step doesn't name one (defaults to the kubeconfig's current namespace).")
	f.StringVar(&ro.operatorNS, "operator-namespace", "default", "Namespace ephemeral exec pods run in when the flow has no namespace of its own.")
	f.StringArrayVar(&ro.setVars, "set", nil, "key=value var override, repeatable; applied on top of the file's vars block.")

	// Kubernetes connection flags (own section, same layout as the teacher CLI)
	conn := pflag.NewFlagSet("Kubernetes connection flags", pflag.ContinueOnError)
	cfgFlags.AddFlags(conn)
	cmd.Flags().AddFlagSet(conn)

	return cmd
}

func runFlow(ctx context.Context, run *runRunOptions) error {
	raw, err := os.ReadFile(run.runOpts.filename)
	if err != nil {
		return fmt.Errorf("reading flow file: %w", err)
	}

	var spec v1alpha1.FlowSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("decoding flow spec: %w", err)
	}

	vars := mergeVars(spec.Vars, run.runOpts.setVars)

	cfg, err := run.configFlags.ToRESTConfig()
	if err != nil {
		return fmt.Errorf("building REST config: %w", err)
	}
	apis, err := kube.NewClients(cfg)
	if err != nil {
		return fmt.Errorf("building cluster clients: %w", err)
	}

	namespace := run.runOpts.namespace
	if namespace == "" {
		if ns, _, err := run.configFlags.ToRawKubeConfigLoader().Namespace(); err == nil {
			namespace = ns
		}
	}

	fctx := flowcontext.New(apis, run.runOpts.operatorNS, namespace, vars)
	result, runErr := engine.NewRunner().RunFlow(ctx, spec, fctx)

	if result != nil {
		fmt.Fprintln(run.streams.Out, result.Summary())
	}
	if runErr != nil {
		return fmt.Errorf("flow run failed: %w", runErr)
	}
	return nil
}

// mergeVars layers --set key=value overrides on top of the spec's own vars
// block, later --set flags winning on key collision.
func mergeVars(base map[string]string, sets []string) map[string]string {
	out := make(map[string]string, len(base)+len(sets))
	for k, v := range base {
		out[k] = v
	}
	for _, kv := range sets {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}
